package audit

import "time"

// SampleLogs is the fixed illustrative dataset served when the audit table
// is empty system-wide (fresh environment, demos). IDs carry a "sample-"
// prefix so a stored record can never be mistaken for one of these.
func SampleLogs() []Log {
	now := time.Now()
	return []Log{
		{
			ID:        "sample-1",
			ActorID:   1,
			ActorName: "Amina Bekova",
			Action:    "Reviewed Application",
			SubjectID: "1042",
			Details:   `{"applicant_name":"Daniyar Seitkali","decision":"needs photo retake"}`,
			IsAdmin:   true,
			CreatedAt: now.Add(-25 * time.Minute),
		},
		{
			ID:        "sample-2",
			ActorID:   2,
			ActorName: "Marat Ospanov",
			Action:    "Uploaded Document",
			SubjectID: "1042",
			Details:   `{"applicant_name":"Daniyar Seitkali","slot":"photo_id"}`,
			IsAdmin:   false,
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        "sample-3",
			ActorID:   1,
			ActorName: "Amina Bekova",
			Action:    "Changed Application Status",
			SubjectID: "1038",
			Details:   `{"applicant_name":"Aigerim Nurlanova","from":"submitted","to":"in_review"}`,
			IsAdmin:   true,
			CreatedAt: now.Add(-5 * time.Hour),
		},
		{
			ID:        "sample-4",
			ActorID:   3,
			ActorName: "Saule Akhmetova",
			Action:    "Admin Login",
			IsAdmin:   true,
			CreatedAt: now.Add(-26 * time.Hour),
		},
		{
			ID:        "sample-5",
			ActorID:   2,
			ActorName: "Marat Ospanov",
			Action:    "Updated Notification Settings",
			IsAdmin:   false,
			CreatedAt: now.Add(-3 * 24 * time.Hour),
		},
	}
}
