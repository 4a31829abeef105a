package summary

import (
	"fmt"
	"time"
)

// WrapDigest frames a recap with the date-range header and completed-count
// footer used by the weekly digest and the on-demand summary.
func WrapDigest(body string, start, end time.Time, count int) string {
	noun := "tasks"
	if count == 1 {
		noun = "task"
	}
	return fmt.Sprintf("📬 Your recap for %s – %s\n\n%s\n\n✅ Completed: %d %s",
		start.Format("Jan 2"), end.Format("Jan 2, 2006"), body, count, noun)
}
