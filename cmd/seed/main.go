// Seeds a local sqlite database with demo applications and audit activity.
// Useful for poking at the admin console without a real environment.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"passportdesk/internal/database"
	"passportdesk/internal/domain/application"
	"passportdesk/internal/domain/audit"
)

func main() {
	db, err := database.Connect("passportdesk.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&application.Application{},
		&audit.Log{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM audit_logs")
	db.Exec("DELETE FROM applications")

	ctx := context.Background()
	appRepo := application.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	writer := audit.NewWriter(auditRepo, appRepo, nil)

	log.Println("Creating applications...")
	apps := []*application.Application{
		{OwnerID: 101, FirstName: "Daniyar", LastName: "Seitkali", Status: "in_review"},
		{OwnerID: 102, FirstName: "Aigerim", MiddleName: "Bolatovna", LastName: "Nurlanova", Status: "submitted"},
		{OwnerID: 103, FirstName: "Timur", LastName: "Zhaksylykov", Status: "draft"},
	}
	for _, a := range apps {
		if err := appRepo.Create(ctx, a); err != nil {
			log.Fatal("create application: ", err)
		}
	}

	// Pretend one applicant already uploaded a photo: pointer only, no
	// object behind it, so the console shows the credential error state.
	if err := appRepo.SetDocumentURL(ctx, apps[0].ID, application.SlotPhotoID,
		fmt.Sprintf("http://localhost:8080/object/passport-documents/%d/photo_id_%d.jpg",
			apps[0].OwnerID, time.Now().Add(-48*time.Hour).UnixMilli()),
	); err != nil {
		log.Fatal("set document url: ", err)
	}

	log.Println("Creating audit activity...")
	entries := []audit.Entry{
		{ActorID: 1, ActorName: "Amina Bekova", Action: "Admin Login", IsAdmin: true, IP: "10.0.0.5"},
		{ActorID: 1, ActorName: "Amina Bekova", Action: "Reviewed Application",
			SubjectID: fmt.Sprintf("%d", apps[0].ID), IsAdmin: true,
			Details: map[string]any{"decision": "needs photo retake"}},
		{ActorID: 2, ActorName: "Marat Ospanov", Action: "Uploaded Document",
			SubjectID: fmt.Sprintf("%d", apps[0].ID), IsAdmin: false,
			Details: map[string]any{"slot": "photo_id"}},
		{ActorID: 1, ActorName: "Amina Bekova", Action: "Changed Application Status",
			SubjectID: fmt.Sprintf("%d", apps[1].ID), IsAdmin: true,
			Details: map[string]any{"from": "submitted", "to": "in_review"}},
		{ActorID: 3, ActorName: "Saule Akhmetova", Action: "Updated Notification Settings", IsAdmin: false},
	}
	for _, e := range entries {
		if err := writer.Append(ctx, e); err != nil {
			log.Fatal("append audit entry: ", err)
		}
	}

	log.Printf("Seeded %d applications, %d audit entries (run id %s)",
		len(apps), len(entries), uuid.New().String()[:8])
}
