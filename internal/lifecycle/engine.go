// Package lifecycle implements the task state machine and the query
// operations built on top of the task store and tag index.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nosybot/internal/model"
	"nosybot/internal/repository"
)

// Expected, recoverable outcomes. Surfaced to the user as plain-language
// failures and never logged as exceptional.
var (
	// ErrNotFound means no task matches the id/owner pair.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTransition means the requested state-machine edge does not exist.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrAlreadyTerminal means the task is done or cancelled and cannot move.
	ErrAlreadyTerminal = errors.New("task already in a terminal state")
)

// transitions is the edge table served by Transition. Done and Cancelled
// have no outbound edges. The edges into Cancelled carry a reason and are
// deliberately absent here: Cancel is the only route into that state.
var transitions = map[model.TaskState][]model.TaskState{
	model.StateTodo:       {model.StateInProgress, model.StateDone},
	model.StateInProgress: {model.StateDone},
	model.StateDone:       {},
	model.StateCancelled:  {},
}

func edgeAllowed(from, to model.TaskState) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Engine struct {
	tasks repository.TaskRepositoryInterface
	tags  repository.TagRepositoryInterface
}

func NewEngine(tasks repository.TaskRepositoryInterface, tags repository.TagRepositoryInterface) *Engine {
	return &Engine{tasks: tasks, tags: tags}
}

// CreateTask creates a task in the Todo state, extracts inline #labels from
// the description and attaches them as extracted tags. The caller supplies a
// placeholder description when the message carried no visible text.
func (e *Engine) CreateTask(ctx context.Context, userID int64, description string, attachmentRef *string) (int64, error) {
	return e.create(ctx, userID, description, model.StateTodo, attachmentRef)
}

// LogCompletedTask records finished work retroactively: the task is
// constructed directly in the Done state, not transitioned into it.
func (e *Engine) LogCompletedTask(ctx context.Context, userID int64, description string) (int64, error) {
	return e.create(ctx, userID, description, model.StateDone, nil)
}

func (e *Engine) create(ctx context.Context, userID int64, description string, state model.TaskState, attachmentRef *string) (int64, error) {
	task := &model.Task{
		UserID:        userID,
		Description:   description,
		State:         state,
		AttachmentRef: attachmentRef,
	}
	if err := e.tasks.Create(ctx, task); err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	if labels := ExtractLabels(description); len(labels) > 0 {
		if err := e.tags.AttachLabels(ctx, task.ID, labels, model.SourceExtracted); err != nil {
			return 0, fmt.Errorf("attach extracted labels: %w", err)
		}
	}
	return task.ID, nil
}

// Transition advances a task along one edge of the state machine.
// Cancellation is not a Transition target: it needs a reason, so it goes
// through Cancel and is rejected here. Ownership mismatches report
// ErrNotFound; attempts to leave a terminal state report ErrAlreadyTerminal;
// any other missing edge reports ErrInvalidTransition. The row is never
// mutated on a rejected edge.
func (e *Engine) Transition(ctx context.Context, taskID, userID int64, target model.TaskState) error {
	if target == model.StateCancelled {
		return ErrInvalidTransition
	}
	task, err := e.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load task %d: %w", taskID, err)
	}
	if task.State.Terminal() {
		return ErrAlreadyTerminal
	}
	if !edgeAllowed(task.State, target) {
		return ErrInvalidTransition
	}
	updated, err := e.tasks.UpdateState(ctx, taskID, userID, task.State, target)
	if err != nil {
		return fmt.Errorf("update task %d state: %w", taskID, err)
	}
	if !updated {
		// The row moved underneath us between read and write.
		return ErrInvalidTransition
	}
	return nil
}

// Cancel atomically sets the cancelled state together with the reason.
// Cancelling a Done task is rejected; re-cancelling a Cancelled one too.
func (e *Engine) Cancel(ctx context.Context, taskID, userID int64, reason string) error {
	task, err := e.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load task %d: %w", taskID, err)
	}
	if task.State.Terminal() {
		return ErrAlreadyTerminal
	}
	cancelled, err := e.tasks.CancelTask(ctx, taskID, userID, reason)
	if err != nil {
		return fmt.Errorf("cancel task %d: %w", taskID, err)
	}
	if !cancelled {
		return ErrAlreadyTerminal
	}
	return nil
}

// AttachLabels attaches manual labels to an owned task. Re-attaching an
// already-present label is a no-op.
func (e *Engine) AttachLabels(ctx context.Context, taskID, userID int64, labels []string) error {
	if _, err := e.tasks.GetByID(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load task %d: %w", taskID, err)
	}
	if err := e.tags.AttachLabels(ctx, taskID, labels, model.SourceManual); err != nil {
		return fmt.Errorf("attach manual labels: %w", err)
	}
	return nil
}

// ListActive returns tasks that are neither done nor cancelled, most recent
// first, each carrying its attached tags.
func (e *Engine) ListActive(ctx context.Context, userID int64) ([]model.Task, error) {
	return e.tasks.ListActive(ctx, userID)
}

// ListDone returns completed tasks, newest first.
func (e *Engine) ListDone(ctx context.Context, userID int64) ([]model.Task, error) {
	return e.tasks.ListByState(ctx, userID, model.StateDone)
}

// ListCancelled returns cancelled tasks with their reasons, newest first.
func (e *Engine) ListCancelled(ctx context.Context, userID int64) ([]model.Task, error) {
	return e.tasks.ListByState(ctx, userID, model.StateCancelled)
}

// ListCompletedInRange returns tasks completed within [start, end]
// inclusive, oldest first. Shared by the on-demand summary and the weekly
// digest.
func (e *Engine) ListCompletedInRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error) {
	return e.tasks.ListDoneInRange(ctx, userID, start, end)
}

// ListAllOwners returns every distinct owner that has ever created a task.
func (e *Engine) ListAllOwners(ctx context.Context) ([]int64, error) {
	return e.tasks.ListOwnerIDs(ctx)
}

// LabelsFor returns the set of labels attached to a task.
func (e *Engine) LabelsFor(ctx context.Context, taskID int64) ([]string, error) {
	return e.tags.LabelsFor(ctx, taskID)
}
