package store

import (
	"strings"

	"github.com/mirrorsensei/sensei/internal/study"
)

// filterHistory keeps the items whose query or response contains search,
// ignoring case. items must already be capped to HistoryLimit.
func filterHistory(items []study.HistoryItem, search string) []study.HistoryItem {
	if search == "" {
		return items
	}
	needle := strings.ToLower(search)
	out := make([]study.HistoryItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Query), needle) ||
			strings.Contains(strings.ToLower(it.Response), needle) {
			out = append(out, it)
		}
	}
	return out
}
