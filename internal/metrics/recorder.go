package metrics

import (
	"database/sql"
	"log/slog"
	"time"
)

// Recorder persists one Record per instrumented invocation. Recording is a
// best-effort sink: every storage problem is logged and the record dropped,
// nothing ever propagates back to the instrumented caller.
type Recorder struct {
	handle *Handle
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given store handle.
func NewRecorder(h *Handle, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		handle: h,
		logger: logger.With("component", "metrics.Recorder"),
	}
}

// Record writes one measurement for the named function. status == StatusError
// requires a non-empty detail; a success stores NULL in the error column.
func (r *Recorder) Record(function string, start, end time.Time, status Status, errDetail string) {
	db, err := r.handle.Acquire()
	if err != nil {
		r.logger.Warn("dropping metric, store unavailable", "function", function, "error", err)
		return
	}

	durationMs := end.Sub(start).Round(time.Millisecond).Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}

	detail := sql.NullString{}
	if status == StatusError {
		if errDetail == "" {
			errDetail = "unknown error"
		}
		detail = sql.NullString{String: errDetail, Valid: true}
	}

	// Next sequence number via read-then-insert. Two concurrent recorders can
	// read the same maximum; the primary key rejects the second insert and
	// that record is dropped. Loss under contention is accepted.
	var next int64
	if err := db.QueryRow("SELECT COALESCE(MAX(sno), 0) + 1 FROM function_metrics").Scan(&next); err != nil {
		r.logger.Warn("dropping metric, sequence query failed", "function", function, "error", err)
		return
	}

	_, err = db.Exec(`INSERT INTO function_metrics (sno, function_name, start_time, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		next, function, FormatTimestamp(start), durationMs, string(status), detail,
	)
	if err != nil {
		if isLocked(err) {
			r.logger.Warn("dropping metric, store locked", "function", function, "sno", next)
		} else {
			r.logger.Warn("dropping metric, insert failed", "function", function, "sno", next, "error", err)
		}
	}
}
