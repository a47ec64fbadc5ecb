package metrics

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestReader_RecentReturnsNewestFirst(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Now()
	for i := 0; i < 15; i++ {
		r.Record(fmt.Sprintf("fn_%d", i), start, start.Add(time.Millisecond), StatusSuccess, "")
	}

	records, err := NewReader(h, testLogger()).Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("got %d records, want 10", len(records))
	}
	// The ten highest sequence numbers, descending: 15..6.
	for i, rec := range records {
		want := int64(15 - i)
		if rec.Seq != want {
			t.Errorf("records[%d].Seq = %d, want %d", i, rec.Seq, want)
		}
	}
}

func TestReader_RecentDefaultsLimit(t *testing.T) {
	h := newTestHandle(t)
	r := NewRecorder(h, testLogger())

	start := time.Now()
	for i := 0; i < 12; i++ {
		r.Record("fn", start, start.Add(time.Millisecond), StatusSuccess, "")
	}

	records, err := NewReader(h, testLogger()).Recent(0)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != DefaultLimit {
		t.Errorf("got %d records, want DefaultLimit (%d)", len(records), DefaultLimit)
	}
}

func TestReader_RecentEmptyStore(t *testing.T) {
	h := newTestHandle(t)

	records, err := NewReader(h, testLogger()).Recent(10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty store, want 0", len(records))
	}
}

func TestReader_UnavailableStoreReturnsErrUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metrics.db")
	h := NewHandle(path, testLogger())

	_, err := NewReader(h, testLogger()).Recent(10)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Recent() error = %v, want ErrUnavailable", err)
	}
}
