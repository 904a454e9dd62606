package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "inProgress"
	StatusCompleted  = "completed"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task groups
const (
	GroupFrontend = "Frontend"
	GroupBackend  = "Backend"
	GroupDatabase = "Database"
)

type Task struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title            string    `gorm:"not null"`
	ShortDescription string    `gorm:"not null"`
	LongDescription  string
	Status           string `gorm:"not null;default:'todo';check:status IN ('todo', 'inProgress', 'completed')"`
	Priority         string `gorm:"not null;default:'medium';check:priority IN ('low', 'medium', 'high')"`
	Deadline         time.Time `gorm:"not null"`
	// "group" is reserved in SQL, hence team_group.
	TeamGroup  string     `gorm:"column:team_group;not null;check:team_group IN ('Frontend', 'Backend', 'Database')"`
	AssignedTo uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null;index"`
	UpdatedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Assignee User      `gorm:"foreignKey:AssignedTo"`
	Creator  User      `gorm:"foreignKey:CreatedBy"`
	Photos   []Photo   `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}
