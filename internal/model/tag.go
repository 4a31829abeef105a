package model

// TagSource records how a tag got attached to a task.
type TagSource string

const (
	// SourceExtracted marks tags pulled from inline #labels in the description.
	SourceExtracted TagSource = "extracted"
	// SourceManual marks tags attached via the /tag command.
	SourceManual TagSource = "manual"
)

type Tag struct {
	ID     int64     `gorm:"primaryKey;autoIncrement"`
	TaskID int64     `gorm:"not null;uniqueIndex:idx_tags_task_label"`
	Label  string    `gorm:"not null;uniqueIndex:idx_tags_task_label"`
	Source TagSource `gorm:"not null;default:extracted"`
}
