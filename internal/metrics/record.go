package metrics

import "time"

// Status represents the outcome of an instrumented call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// startTimeLayout is the persisted timestamp format: month name, day, and
// time-of-day at millisecond precision.
const startTimeLayout = "January 02 15:04:05.000"

// Record is one persisted measurement of an instrumented call. Field order
// mirrors the column order of the function_metrics table, which is the
// compatibility surface for anything reading the store file directly.
type Record struct {
	Seq        int64  `json:"sno" db:"sno"`
	Function   string `json:"function_name" db:"function_name"`
	StartTime  string `json:"start_time" db:"start_time"`
	DurationMs int64  `json:"duration_ms" db:"duration_ms"`
	Status     Status `json:"status" db:"status"`
	Error      string `json:"error,omitempty" db:"error"` // empty unless Status == StatusError
}

// FormatTimestamp renders an instant in the fixed millisecond-precision
// format used for the start_time column.
func FormatTimestamp(t time.Time) string {
	return t.Format(startTimeLayout)
}
