package metrics

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRecorder_SequentialRecordsAreStrictlyIncreasing(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Now()
	for i := 0; i < 5; i++ {
		r.Record("seq_fn", start, start.Add(10*time.Millisecond), StatusSuccess, "")
	}

	records, err := NewReader(h, testLogger()).Recent(5)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	for i, rec := range records {
		want := int64(5 - i)
		if rec.Seq != want {
			t.Errorf("records[%d].Seq = %d, want %d", i, rec.Seq, want)
		}
	}
}

func TestRecorder_SuccessStoresNullError(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Now()
	r.Record("ok_fn", start, start.Add(5*time.Millisecond), StatusSuccess, "")

	db, err := h.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	var nullErrors int
	if err := db.QueryRow("SELECT COUNT(*) FROM function_metrics WHERE error IS NULL").Scan(&nullErrors); err != nil {
		t.Fatalf("query: %v", err)
	}
	if nullErrors != 1 {
		t.Errorf("success rows with NULL error = %d, want 1", nullErrors)
	}
}

func TestRecorder_ErrorDetailRoundTrips(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Now()
	r.Record("boom_fn", start, start.Add(time.Millisecond), StatusError, "boom")

	records, err := NewReader(h, testLogger()).Recent(1)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Status != StatusError {
		t.Errorf("Status = %q, want %q", records[0].Status, StatusError)
	}
	// Exactly the recorded detail, not the display placeholder.
	if records[0].Error != "boom" {
		t.Errorf("Error = %q, want %q", records[0].Error, "boom")
	}
}

func TestRecorder_NegativeDurationClampsToZero(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Now()
	r.Record("backwards_clock", start, start.Add(-50*time.Millisecond), StatusSuccess, "")

	records, err := NewReader(h, testLogger()).Recent(1)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if records[0].DurationMs != 0 {
		t.Errorf("DurationMs = %d, want 0", records[0].DurationMs)
	}
}

func TestRecorder_UnavailableStoreIsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metrics.db")
	h := NewHandle(path, testLogger())
	r := NewRecorder(h, testLogger())

	// Must not panic or block; the record is simply dropped.
	start := time.Now()
	r.Record("lost_fn", start, start.Add(time.Millisecond), StatusSuccess, "")
}

func TestRecorder_StartTimeFormat(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Date(2026, time.March, 7, 14, 30, 15, 123*int(time.Millisecond), time.UTC)
	r.Record("fmt_fn", start, start.Add(time.Millisecond), StatusSuccess, "")

	records, err := NewReader(h, testLogger()).Recent(1)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if got, want := records[0].StartTime, "March 07 14:30:15.123"; got != want {
		t.Errorf("StartTime = %q, want %q", got, want)
	}
}
