package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Task status values. "in-progress" keeps the dash used on the REST surface.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Lifecycle states. Archived tasks stay in the table but are excluded from
// listings, single fetches and statistics.
const (
	StateActive   = "active"
	StateArchived = "archived"
)

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"not null;default:'pending'"`
	Priority    string     `json:"priority" gorm:"not null;default:'medium'"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags" gorm:"serializer:json"`
	State       string     `json:"state" gorm:"not null;default:'active';index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func (t *Task) IsArchived() bool {
	return t.State == StateArchived
}
