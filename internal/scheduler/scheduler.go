// Package scheduler runs the three broadcast jobs: interval check-ins, the
// daily planning reminder, and the weekly digest. Jobs are best-effort
// broadcasts: one owner's failure never aborts the batch.
//
// Runs are not guarded against overlap; intervals are assumed to be much
// larger than job duration.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"nosybot/internal/config"
	"nosybot/internal/model"
	"nosybot/internal/summary"
)

// Lister is the read-only slice of the engine the jobs need.
type Lister interface {
	ListAllOwners(ctx context.Context) ([]int64, error)
	ListActive(ctx context.Context, userID int64) ([]model.Task, error)
	ListCompletedInRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error)
}

// Sender delivers one message to one owner.
type Sender interface {
	Send(userID int64, text string) error
}

type Scheduler struct {
	engine     Lister
	sender     Sender
	summarizer summary.Summarizer
	cfg        *config.Config
	log        *zap.SugaredLogger
	cron       *cron.Cron
	now        func() time.Time
}

func New(engine Lister, sender Sender, summarizer summary.Summarizer, cfg *config.Config, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		engine:     engine,
		sender:     sender,
		summarizer: summarizer,
		cfg:        cfg,
		log:        log,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start registers the three jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", s.cfg.CheckinIntervalMin), s.CheckIn); err != nil {
		return fmt.Errorf("register check-in job: %w", err)
	}
	dailySpec := fmt.Sprintf("%d %d * * *", s.cfg.DailyReminderMinute, s.cfg.DailyReminderHour)
	if _, err := s.cron.AddFunc(dailySpec, s.DailyReminder); err != nil {
		return fmt.Errorf("register daily reminder job: %w", err)
	}
	digestSpec := fmt.Sprintf("%d %d * * %d", s.cfg.DigestMinute, s.cfg.DigestHour, s.cfg.DigestWeekday)
	if _, err := s.cron.AddFunc(digestSpec, s.WeeklyDigest); err != nil {
		return fmt.Errorf("register weekly digest job: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron runner and returns a context that closes once any
// running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// insideCheckinWindow is the cheap early-exit gate for the check-in job:
// configured weekday range inclusive, local hour in [start, end).
func (s *Scheduler) insideCheckinWindow(now time.Time) bool {
	wd := now.Weekday()
	if wd < s.cfg.CheckinStartWeekday || wd > s.cfg.CheckinEndWeekday {
		return false
	}
	h := now.Hour()
	return h >= s.cfg.CheckinStartHour && h < s.cfg.CheckinEndHour
}

// CheckIn nudges every owner about their active tasks. Skipped entirely
// outside the configured weekday/hour window.
func (s *Scheduler) CheckIn() {
	now := s.now()
	if !s.insideCheckinWindow(now) {
		return
	}
	runID := uuid.New()
	ctx := context.Background()

	owners, err := s.engine.ListAllOwners(ctx)
	if err != nil {
		s.log.Errorw("check-in: failed to list owners", "run", runID, "error", err)
		return
	}
	for _, owner := range owners {
		tasks, err := s.engine.ListActive(ctx, owner)
		if err != nil {
			s.log.Errorw("check-in: failed to list active tasks", "run", runID, "user", owner, "error", err)
			continue
		}
		if err := s.sender.Send(owner, checkinMessage(tasks)); err != nil {
			s.log.Errorw("check-in: failed to send reminder", "run", runID, "user", owner, "error", err)
		}
	}
}

// DailyReminder asks every owner to plan their day. The whole job is
// skipped on the configured weekday.
func (s *Scheduler) DailyReminder() {
	now := s.now()
	if now.Weekday() == s.cfg.DailySkipWeekday {
		return
	}
	runID := uuid.New()
	ctx := context.Background()

	owners, err := s.engine.ListAllOwners(ctx)
	if err != nil {
		s.log.Errorw("daily reminder: failed to list owners", "run", runID, "error", err)
		return
	}
	for _, owner := range owners {
		msg := "🌅 Good morning! What are you planning to get done today?\nAdd tasks with /task <description>."
		if err := s.sender.Send(owner, msg); err != nil {
			s.log.Errorw("daily reminder: failed to send", "run", runID, "user", owner, "error", err)
		}
	}
}

// WeeklyDigest summarizes each owner's completed tasks over the trailing
// seven days. Owners with nothing completed receive no message.
func (s *Scheduler) WeeklyDigest() {
	runID := uuid.New()
	ctx := context.Background()
	end := s.now()
	start := end.AddDate(0, 0, -7)

	owners, err := s.engine.ListAllOwners(ctx)
	if err != nil {
		s.log.Errorw("weekly digest: failed to list owners", "run", runID, "error", err)
		return
	}
	for _, owner := range owners {
		tasks, err := s.engine.ListCompletedInRange(ctx, owner, start, end)
		if err != nil {
			s.log.Errorw("weekly digest: failed to list completed tasks", "run", runID, "user", owner, "error", err)
			continue
		}
		if len(tasks) == 0 {
			continue
		}
		recap, err := s.summarizer.Summarize(ctx, tasks)
		if err != nil {
			s.log.Errorw("weekly digest: summarization failed", "run", runID, "user", owner, "error", err)
			continue
		}
		if err := s.sender.Send(owner, summary.WrapDigest(recap, start, end, len(tasks))); err != nil {
			s.log.Errorw("weekly digest: failed to send", "run", runID, "user", owner, "error", err)
		}
	}
}

func checkinMessage(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "🔔 Progress check-in!\nNothing on your plate right now. Add a task with /task <description>."
	}
	msg := "🔔 Progress check-in! Your open tasks:\n"
	for _, t := range tasks {
		msg += fmt.Sprintf("%s %d. %s [%s]\n", t.State.Emoji(), t.ID, t.Description, t.State)
	}
	msg += "\nUpdate with /start_task <id> or /done <id>."
	return msg
}
