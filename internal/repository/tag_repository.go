package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nosybot/internal/model"
)

type TagRepository struct {
	db *gorm.DB
}

type TagRepositoryInterface interface {
	AttachLabels(ctx context.Context, taskID int64, labels []string, source model.TagSource) error
	LabelsFor(ctx context.Context, taskID int64) ([]string, error)
}

var _ TagRepositoryInterface = (*TagRepository)(nil)

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// AttachLabels bulk-inserts labels for a task. Duplicates are absorbed by the
// (task_id, label) uniqueness constraint rather than reported as errors.
func (r *TagRepository) AttachLabels(ctx context.Context, taskID int64, labels []string, source model.TagSource) error {
	if len(labels) == 0 {
		return nil
	}
	tags := make([]model.Tag, 0, len(labels))
	for _, label := range labels {
		tags = append(tags, model.Tag{
			TaskID: taskID,
			Label:  label,
			Source: source,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags).Error
}

// LabelsFor retrieves all labels attached to a task
func (r *TagRepository) LabelsFor(ctx context.Context, taskID int64) ([]string, error) {
	var labels []string
	result := r.db.WithContext(ctx).Model(&model.Tag{}).
		Where("task_id = ?", taskID).
		Pluck("label", &labels)
	if result.Error != nil {
		return nil, result.Error
	}
	return labels, nil
}
