package model

import (
	"time"
)

// TaskState is the lifecycle state of a task. Stored as a small integer;
// new states must only ever be appended to keep old rows valid.
type TaskState int16

const (
	StateTodo TaskState = iota
	StateInProgress
	StateDone
	StateCancelled
)

func (s TaskState) String() string {
	switch s {
	case StateTodo:
		return "TODO"
	case StateInProgress:
		return "WIP"
	case StateDone:
		return "DONE"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Emoji is the marker shown next to a task in bot messages.
func (s TaskState) Emoji() string {
	switch s {
	case StateTodo:
		return "📌"
	case StateInProgress:
		return "🚀"
	case StateDone:
		return "✅"
	case StateCancelled:
		return "❌"
	default:
		return "❓"
	}
}

// Terminal reports whether no outbound transitions exist from s.
func (s TaskState) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

type Task struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	UserID        int64     `gorm:"not null;index"`
	Description   string    `gorm:"not null"`
	State         TaskState `gorm:"not null;default:0"`
	AttachmentRef *string
	CancelReason  *string
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	Tags []Tag `gorm:"foreignKey:TaskID"`
}
