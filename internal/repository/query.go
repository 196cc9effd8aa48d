package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// logFilter renders the WHERE clause shared by the event log stores.
// placeholder renders the n-th (1-based) bind parameter and timeArg
// converts a time bound into the column's storage representation.
func logFilter(q model.LogQuery, tsColumn string, placeholder func(n int) string, timeArg func(time.Time) any) (string, []any) {
	var conditions []string
	var args []any

	if event := strings.TrimSpace(q.Event); event != "" {
		args = append(args, event)
		conditions = append(conditions, "event = "+placeholder(len(args)))
	}
	if !q.Start.IsZero() {
		args = append(args, timeArg(q.Start))
		conditions = append(conditions, tsColumn+" >= "+placeholder(len(args)))
	}
	if !q.End.IsZero() {
		args = append(args, timeArg(q.End))
		conditions = append(conditions, tsColumn+" <= "+placeholder(len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func pgPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func sqlitePlaceholder(int) string { return "?" }
