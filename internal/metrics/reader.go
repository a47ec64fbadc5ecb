package metrics

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// DefaultLimit is how many records Recent returns when no limit is given.
const DefaultLimit = 10

// Reader retrieves persisted records for display. It shares the store handle
// with recorders but only ever reads.
type Reader struct {
	handle *Handle
	logger *slog.Logger
}

// NewReader creates a reader over the given store handle.
func NewReader(h *Handle, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		handle: h,
		logger: logger.With("component", "metrics.Reader"),
	}
}

// Recent returns the limit most recent records ordered by sequence number
// descending. limit <= 0 means DefaultLimit. An unavailable store returns an
// error wrapping ErrUnavailable.
func (rd *Reader) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	db, err := rd.handle.Acquire()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT sno, function_name, start_time, duration_ms, status, error
		FROM function_metrics ORDER BY sno DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var status string
		var detail sql.NullString
		if err := rows.Scan(&rec.Seq, &rec.Function, &rec.StartTime, &rec.DurationMs, &status, &detail); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		rec.Status = Status(status)
		rec.Error = detail.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric rows: %w", err)
	}
	return records, nil
}
