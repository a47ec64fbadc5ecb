// Package view renders persisted metrics for human consumption: a bordered
// text table, an optional CEL row filter, and a live follow mode.
package view

import (
	"errors"
	"strconv"
	"strings"

	"github.com/funcmetrics/funcmetrics/internal/metrics"
)

var headers = []string{"Seq", "Function", "Start Time", "Duration(ms)", "Status", "Error"}

// errPlaceholder stands in for the NULL error column of successful calls.
const errPlaceholder = "-"

// RecentMetrics returns the most recent records rendered as a table, passed
// through the optional filter (nil means no filtering). Storage problems
// degrade to a descriptive message -- this function never fails the caller.
func RecentMetrics(rd *metrics.Reader, f *Filter, limit int) string {
	records, err := rd.Recent(limit)
	if err != nil {
		if errors.Is(err, metrics.ErrUnavailable) {
			return "metrics unavailable: " + err.Error()
		}
		return "failed to read metrics: " + err.Error()
	}
	if f != nil {
		records, err = f.Apply(records)
		if err != nil {
			return "failed to apply filter: " + err.Error()
		}
	}
	return Render(records)
}

// Render draws records as a grid table with a fixed six-column header.
func Render(records []metrics.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		errCol := rec.Error
		if errCol == "" {
			errCol = errPlaceholder
		}
		rows = append(rows, []string{
			strconv.FormatInt(rec.Seq, 10),
			rec.Function,
			rec.StartTime,
			strconv.FormatInt(rec.DurationMs, 10),
			string(rec.Status),
			errCol,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeBorder(&b, widths, '-')
	writeRow(&b, headers, widths)
	writeBorder(&b, widths, '=')
	for _, row := range rows {
		writeRow(&b, row, widths)
		writeBorder(&b, widths, '-')
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeBorder(b *strings.Builder, widths []int, fill byte) {
	for _, w := range widths {
		b.WriteByte('+')
		b.WriteString(strings.Repeat(string(fill), w+2))
	}
	b.WriteString("+\n")
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		b.WriteString("| ")
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+1))
	}
	b.WriteString("|\n")
}
