package audit

import "time"

// Log is one immutable audit record. Rows are insert-only: no update or
// delete path exists in normal operation.
type Log struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	ActorID   int64     `gorm:"column:actor_id;index" json:"actor_id"`
	ActorName string    `gorm:"column:actor_name" json:"actor_name"`
	Action    string    `gorm:"column:action" json:"action"`
	SubjectID string    `gorm:"column:subject_id;index" json:"subject_id"`
	Details   string    `gorm:"column:details" json:"-"` // serialized JSON, "" when none
	IsAdmin   bool      `gorm:"column:is_admin" json:"is_admin"`
	IPAddress string    `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent string    `gorm:"column:user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Log) TableName() string { return "audit_logs" }

// Entry is the write-side input to the trail writer. Details stay structured
// here; serialization happens on append.
type Entry struct {
	ActorID   int64
	ActorName string
	Action    string
	SubjectID string // "" when the action has no subject record
	Details   map[string]any
	IsAdmin   bool
	IP        string
	UserAgent string
}

// Actor is the current caller identity as resolved by the identity service.
// This module consumes it; it never mints or stores actors.
type Actor struct {
	ID        int64
	Name      string
	Admin     bool
	IP        string
	UserAgent string
}
