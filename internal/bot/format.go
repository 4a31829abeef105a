package bot

import (
	"fmt"
	"strings"

	"nosybot/internal/model"
)

const helpText = `Available commands:
/start - Start the bot
/help - Show this help message
/task <description> - Add a new task (inline #labels become tags)
/log <description> - Record a task you already finished
/list - Show your active tasks
/completed - Show your completed tasks
/cancelled - Show your cancelled tasks
/start_task <number> - Mark a task as in progress
/done <number> - Mark a task as done
/cancel <number> - Cancel a task (I will ask why)
/tag <number> <labels...> - Attach labels to a task
/summary [days] - Recap of what you completed (default 7 days)`

// FormatTaskLine renders one task the way the bot lists it.
func FormatTaskLine(t model.Task) string {
	line := fmt.Sprintf("%s %d. %s [%s]", t.State.Emoji(), t.ID, t.Description, t.State)
	if len(t.Tags) > 0 {
		labels := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			labels = append(labels, "#"+tag.Label)
		}
		line += " " + strings.Join(labels, " ")
	}
	if t.State == model.StateCancelled && t.CancelReason != nil {
		line += fmt.Sprintf(" — %s", *t.CancelReason)
	}
	return line
}

// FormatTaskList renders a header plus one line per task, or the empty
// notice when there is nothing to show.
func FormatTaskList(header, emptyNotice string, tasks []model.Task) string {
	if len(tasks) == 0 {
		return emptyNotice
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, header)
	for _, t := range tasks {
		lines = append(lines, FormatTaskLine(t))
	}
	return strings.Join(lines, "\n")
}
