package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"nosybot/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id, userID int64) (*model.Task, error)
	UpdateState(ctx context.Context, id, userID int64, from, to model.TaskState) (bool, error)
	CancelTask(ctx context.Context, id, userID int64, reason string) (bool, error)
	ListActive(ctx context.Context, userID int64) ([]model.Task, error)
	ListByState(ctx context.Context, userID int64, state model.TaskState) ([]model.Task, error)
	ListDoneInRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error)
	ListOwnerIDs(ctx context.Context) ([]int64, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID, scoped to its owner
func (r *TaskRepository) GetByID(ctx context.Context, id, userID int64) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// UpdateState moves a task from one state to another in a single conditional
// update. Returns false when no row matched the id/owner/state predicate.
func (r *TaskRepository) UpdateState(ctx context.Context, id, userID int64, from, to model.TaskState) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ? AND state = ?", id, userID, from).
		Update("state", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CancelTask atomically sets the cancelled state together with its reason.
// The state predicate keeps terminal tasks untouched.
func (r *TaskRepository) CancelTask(ctx context.Context, id, userID int64, reason string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ? AND state IN ?", id, userID,
			[]model.TaskState{model.StateTodo, model.StateInProgress}).
		Updates(map[string]interface{}{
			"state":         model.StateCancelled,
			"cancel_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListActive retrieves tasks that are neither done nor cancelled,
// most recent first, with their tags
func (r *TaskRepository) ListActive(ctx context.Context, userID int64) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ? AND state NOT IN ?", userID,
			[]model.TaskState{model.StateDone, model.StateCancelled}).
		Order("id DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ListByState retrieves all tasks of one state, newest first
func (r *TaskRepository) ListByState(ctx context.Context, userID int64, state model.TaskState) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, state).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ListDoneInRange retrieves completed tasks created within [start, end],
// both bounds inclusive, oldest first
func (r *TaskRepository) ListDoneInRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ? AND created_at >= ? AND created_at <= ?",
			userID, model.StateDone, start, end).
		Order("created_at ASC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// ListOwnerIDs retrieves every distinct user that has ever created a task
func (r *TaskRepository) ListOwnerIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Distinct("user_id").
		Pluck("user_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
