package lifecycle

import (
	"regexp"
	"strings"
)

var labelPattern = regexp.MustCompile(`#(\w+)`)

// ExtractLabels pulls inline #labels out of a task description, lowercased
// and deduplicated. Order of first appearance is preserved.
func ExtractLabels(description string) []string {
	matches := labelPattern.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		label := strings.ToLower(m[1])
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}
