// Package bot is the Telegram transport: it parses commands, drives the
// cancellation dialogue, and maps each command onto one engine operation.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"nosybot/internal/dialogue"
	"nosybot/internal/lifecycle"
	"nosybot/internal/model"
	"nosybot/internal/summary"
)

// photoPlaceholder is used when a photo message carries no caption; the
// engine never fabricates description text itself.
const photoPlaceholder = "📷 Photo task"

type Bot struct {
	api        *tgbotapi.BotAPI
	engine     *lifecycle.Engine
	dialogue   *dialogue.Dialogue
	summarizer summary.Summarizer
	log        *zap.SugaredLogger
}

func New(token string, engine *lifecycle.Engine, dlg *dialogue.Dialogue, summarizer summary.Summarizer, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Bot{
		api:        api,
		engine:     engine,
		dialogue:   dlg,
		summarizer: summarizer,
		log:        log,
	}, nil
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	b.log.Infow("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// Send delivers one message to one owner. Owner ids double as private chat
// ids on Telegram.
func (b *Bot) Send(userID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		b.log.Errorw("failed to send reply", "user", msg.From.ID, "error", err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if msg.IsCommand() {
		// Команда во время ожидания причины отмены — поведение решает политика
		if b.dialogue.Waiting(userID) {
			execute, err := b.dialogue.OnCommand(ctx, userID, msg.Text)
			if !execute {
				b.replyCancelOutcome(msg, err)
				return
			}
		}
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	// Свободный текст интересен только как причина отмены
	if b.dialogue.Waiting(userID) {
		_, err := b.dialogue.Resolve(ctx, userID, msg.Text)
		b.replyCancelOutcome(msg, err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.reply(msg, fmt.Sprintf("Hi %s! I am your bot. Nice to meet you!", msg.From.FirstName))

	case "help":
		b.reply(msg, helpText)

	case "task":
		if args == "" {
			b.reply(msg, "Please provide a task description.\nUsage: /task Buy groceries")
			return
		}
		if _, err := b.engine.CreateTask(ctx, userID, args, nil); err != nil {
			b.log.Errorw("failed to create task", "user", userID, "error", err)
			b.reply(msg, "Failed to add task. Please try again.")
			return
		}
		b.reply(msg, fmt.Sprintf("Task added: %s", args))

	case "log":
		if args == "" {
			b.reply(msg, "Please provide a task description.\nUsage: /log Shipped the release")
			return
		}
		if _, err := b.engine.LogCompletedTask(ctx, userID, args); err != nil {
			b.log.Errorw("failed to log completed task", "user", userID, "error", err)
			b.reply(msg, "Failed to log task. Please try again.")
			return
		}
		b.reply(msg, fmt.Sprintf("Logged as done: %s 🎉", args))

	case "list":
		tasks, err := b.engine.ListActive(ctx, userID)
		if err != nil {
			b.log.Errorw("failed to list active tasks", "user", userID, "error", err)
			b.reply(msg, "Failed to load your tasks. Please try again.")
			return
		}
		b.reply(msg, FormatTaskList("Your tasks:", "You have no tasks!", tasks))

	case "completed":
		tasks, err := b.engine.ListDone(ctx, userID)
		if err != nil {
			b.log.Errorw("failed to list done tasks", "user", userID, "error", err)
			b.reply(msg, "Failed to load your tasks. Please try again.")
			return
		}
		b.reply(msg, FormatTaskList("Completed tasks:", "Nothing completed yet — you'll get there!", tasks))

	case "cancelled":
		tasks, err := b.engine.ListCancelled(ctx, userID)
		if err != nil {
			b.log.Errorw("failed to list cancelled tasks", "user", userID, "error", err)
			b.reply(msg, "Failed to load your tasks. Please try again.")
			return
		}
		b.reply(msg, FormatTaskList("Cancelled tasks:", "No cancelled tasks.", tasks))

	case "start_task":
		taskID, ok := parseTaskID(args)
		if !ok {
			b.reply(msg, "Please provide a valid task number.\nUsage: /start_task 1")
			return
		}
		if err := b.engine.Transition(ctx, taskID, userID, model.StateInProgress); err != nil {
			b.reply(msg, transitionFailureText(err))
			b.logStorageError("start_task", userID, err)
			return
		}
		b.reply(msg, fmt.Sprintf("Task %d is now in progress! 🚀", taskID))

	case "done":
		taskID, ok := parseTaskID(args)
		if !ok {
			b.reply(msg, "Please provide a valid task number.\nUsage: /done 1")
			return
		}
		if err := b.engine.Transition(ctx, taskID, userID, model.StateDone); err != nil {
			b.reply(msg, transitionFailureText(err))
			b.logStorageError("done", userID, err)
			return
		}
		b.reply(msg, fmt.Sprintf("Task %d completed! 🎉", taskID))

	case "cancel":
		taskID, ok := parseTaskID(args)
		if !ok {
			b.reply(msg, "Please provide a valid task number.\nUsage: /cancel 1")
			return
		}
		b.dialogue.Begin(userID, taskID)
		b.reply(msg, fmt.Sprintf("Why do you want to cancel task %d? Reply with the reason.", taskID))

	case "tag":
		parts := strings.Fields(args)
		if len(parts) < 2 {
			b.reply(msg, "Usage: /tag <task number> <labels...>")
			return
		}
		taskID, ok := parseTaskID(parts[0])
		if !ok {
			b.reply(msg, "Please provide a valid task number.\nUsage: /tag 1 errand home")
			return
		}
		labels := make([]string, 0, len(parts)-1)
		for _, l := range parts[1:] {
			labels = append(labels, strings.ToLower(strings.TrimPrefix(l, "#")))
		}
		if err := b.engine.AttachLabels(ctx, taskID, userID, labels); err != nil {
			b.reply(msg, transitionFailureText(err))
			b.logStorageError("tag", userID, err)
			return
		}
		all, err := b.engine.LabelsFor(ctx, taskID)
		if err != nil {
			b.logStorageError("tag", userID, err)
			all = labels
		}
		b.reply(msg, fmt.Sprintf("Task %d tags: #%s", taskID, strings.Join(all, " #")))

	case "summary":
		days := 7
		if args != "" {
			n, err := strconv.Atoi(args)
			if err != nil || n <= 0 {
				b.reply(msg, "Please provide a valid number of days.\nUsage: /summary 14")
				return
			}
			days = n
		}
		b.sendSummary(ctx, msg, days)

	default:
		b.reply(msg, "I don't know that command. Try /help.")
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	// Telegram присылает несколько размеров, берём самый большой
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	description := strings.TrimSpace(msg.Caption)
	if description == "" {
		description = photoPlaceholder
	}
	if _, err := b.engine.CreateTask(ctx, msg.From.ID, description, &fileID); err != nil {
		b.log.Errorw("failed to create photo task", "user", msg.From.ID, "error", err)
		b.reply(msg, "Failed to add task. Please try again.")
		return
	}
	b.reply(msg, fmt.Sprintf("Task added: %s", description))
}

func (b *Bot) sendSummary(ctx context.Context, msg *tgbotapi.Message, days int) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	tasks, err := b.engine.ListCompletedInRange(ctx, msg.From.ID, start, end)
	if err != nil {
		b.log.Errorw("failed to list completed tasks", "user", msg.From.ID, "error", err)
		b.reply(msg, "Failed to load your tasks. Please try again.")
		return
	}
	if len(tasks) == 0 {
		b.reply(msg, fmt.Sprintf("Nothing completed in the last %d days yet. Keep going!", days))
		return
	}
	recap, err := b.summarizer.Summarize(ctx, tasks)
	if err != nil {
		b.log.Errorw("summarization failed", "user", msg.From.ID, "error", err)
		b.reply(msg, "I couldn't put your recap together right now. Please try again later.")
		return
	}
	b.reply(msg, summary.WrapDigest(recap, start, end, len(tasks)))
}

func (b *Bot) replyCancelOutcome(msg *tgbotapi.Message, err error) {
	if err == nil {
		b.reply(msg, "Task cancelled. 👍")
		return
	}
	b.reply(msg, transitionFailureText(err))
	b.logStorageError("cancel", msg.From.ID, err)
}

// transitionFailureText maps the engine's error taxonomy onto the uniform
// bot-facing failure messages.
func transitionFailureText(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return "I couldn't find that task. Please check the task number with /list."
	case errors.Is(err, lifecycle.ErrAlreadyTerminal):
		return "That task is already finished or cancelled."
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return "That task can't be moved to that state."
	default:
		return "Something went wrong. Please try again."
	}
}

// logStorageError logs unexpected failures only; the expected taxonomy
// errors are normal outcomes and stay out of the log.
func (b *Bot) logStorageError(op string, userID int64, err error) {
	if errors.Is(err, lifecycle.ErrNotFound) ||
		errors.Is(err, lifecycle.ErrAlreadyTerminal) ||
		errors.Is(err, lifecycle.ErrInvalidTransition) {
		return
	}
	b.log.Errorw("storage failure", "op", op, "user", userID, "error", err)
}

func parseTaskID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
