// Package dialogue implements the two-step cancellation conversation: the
// owner names a task id, then the next free-text message from that owner is
// captured as the cancellation reason.
package dialogue

import (
	"context"
	"strings"
)

// Canceller is the single engine operation the dialogue needs.
type Canceller interface {
	Cancel(ctx context.Context, taskID, userID int64, reason string) error
}

// CommandPolicy decides what happens when a command-shaped message arrives
// while a cancellation is waiting for its reason.
type CommandPolicy int

const (
	// ConsumeAsReason treats any text, command-shaped or not, as the reason.
	ConsumeAsReason CommandPolicy = iota
	// AbortOnCommand drops the pending entry and lets the command execute.
	AbortOnCommand
)

// ParsePolicy maps a config value to a policy, defaulting to consume.
func ParsePolicy(v string) CommandPolicy {
	if strings.EqualFold(v, "abort") {
		return AbortOnCommand
	}
	return ConsumeAsReason
}

type Dialogue struct {
	sessions *SessionStore
	engine   Canceller
	policy   CommandPolicy
}

func New(engine Canceller, policy CommandPolicy) *Dialogue {
	return &Dialogue{
		sessions: NewSessionStore(),
		engine:   engine,
		policy:   policy,
	}
}

// Begin starts (or restarts) a cancel dialogue for the owner. The engine is
// not touched yet.
func (d *Dialogue) Begin(userID, taskID int64) {
	d.sessions.Begin(userID, taskID)
}

// Waiting reports whether the owner's next free-text message will be
// consumed as a cancellation reason.
func (d *Dialogue) Waiting(userID int64) bool {
	return d.sessions.Waiting(userID)
}

// Resolve applies the owner's pending cancellation with the given reason.
// The pending entry is erased whatever the outcome. Returns false when the
// owner had no dialogue in flight.
func (d *Dialogue) Resolve(ctx context.Context, userID int64, reason string) (bool, error) {
	p, ok := d.sessions.Take(userID)
	if !ok {
		return false, nil
	}
	return true, d.engine.Cancel(ctx, p.TaskID, userID, reason)
}

// OnCommand is called when a recognized command arrives while the owner is
// waiting for a reason. Under AbortOnCommand the pending entry is dropped
// and the command should run; under ConsumeAsReason the raw command text is
// applied as the reason. Returns true when the command should still execute.
func (d *Dialogue) OnCommand(ctx context.Context, userID int64, raw string) (executeCommand bool, err error) {
	if d.policy == AbortOnCommand {
		d.sessions.Take(userID)
		return true, nil
	}
	_, err = d.Resolve(ctx, userID, raw)
	return false, err
}
