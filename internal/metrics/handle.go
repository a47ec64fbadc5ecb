package metrics

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-sqlite3"
)

// ErrUnavailable is returned by Acquire when the store cannot be opened.
// Callers treat it as a signal to degrade, not as a fatal condition.
var ErrUnavailable = errors.New("metrics store unavailable")

// DefaultPath is the fixed relative path of the process-wide store.
const DefaultPath = "function_metrics.db"

// HandleState tracks the lifecycle of a store handle.
type HandleState int

const (
	StateUninitialized HandleState = iota
	StateConnected
	StateClosed
)

// Handle manages a lazily-opened connection to the embedded SQLite store.
// A single Handle is meant to be shared across all recorders and readers in
// the process. A failed open is never cached: every Acquire after a failure
// retries from scratch.
type Handle struct {
	mu       sync.Mutex
	path     string
	db       *sql.DB
	state    HandleState
	logger   *slog.Logger
	hookOnce sync.Once
}

// NewHandle creates a handle over the SQLite file at path. Nothing is opened
// until the first Acquire.
func NewHandle(path string, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{
		path:   path,
		logger: logger.With("component", "metrics.Handle"),
	}
}

var (
	defaultOnce   sync.Once
	defaultHandle *Handle
)

// Default returns the process-wide handle over DefaultPath.
func Default() *Handle {
	defaultOnce.Do(func() {
		defaultHandle = NewHandle(DefaultPath, slog.Default())
	})
	return defaultHandle
}

// Acquire returns the shared connection, opening it on first use or after a
// Close. On failure it logs a diagnostic and returns an error wrapping
// ErrUnavailable; the handle stays re-acquirable. The first successful
// Acquire ensures the schema exists and registers a shutdown hook that
// releases the store file on SIGINT/SIGTERM.
func (h *Handle) Acquire() (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateConnected {
		return h.db, nil
	}

	db, err := sql.Open("sqlite3", h.path)
	if err != nil {
		h.logger.Warn("failed to open metrics store", "path", h.path, "error", err)
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, h.path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		if isLocked(err) {
			h.logger.Warn("metrics store is locked by another process", "path", h.path)
		} else {
			h.logger.Warn("failed to connect to metrics store", "path", h.path, "error", err)
		}
		return nil, fmt.Errorf("%w: connect %s: %v", ErrUnavailable, h.path, err)
	}

	if err := ensureSchema(db, h.logger); err != nil && isLocked(err) {
		// A lock during schema setup means another process owns the file
		// right now. Do not cache the connection; the next Acquire retries.
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema setup on %s: %v", ErrUnavailable, h.path, err)
	}

	h.db = db
	h.state = StateConnected
	h.hookOnce.Do(h.registerShutdownHook)
	return db, nil
}

// Close releases the connection. It is a no-op when the handle was never
// connected or is already closed, and a later Acquire reconnects.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateConnected {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	h.state = StateClosed
	if err != nil {
		return fmt.Errorf("close metrics store: %w", err)
	}
	return nil
}

// State reports the current lifecycle state.
func (h *Handle) State() HandleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Path returns the store file path this handle manages.
func (h *Handle) Path() string {
	return h.path
}

// registerShutdownHook closes the handle when the process is interrupted,
// then re-delivers the signal so termination behavior is unchanged. Normal
// returns from main are expected to defer Close themselves.
func (h *Handle) registerShutdownHook() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		h.logger.Info("closing metrics store on shutdown", "signal", sig.String())
		_ = h.Close()
		signal.Stop(sigCh)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(sig)
		}
	}()
}

// schema declares the metrics table. Column names and order are the on-disk
// compatibility surface; sno is the externally visible ordering key.
const schema = `
CREATE TABLE IF NOT EXISTS function_metrics (
	sno           INTEGER PRIMARY KEY,
	function_name TEXT NOT NULL,
	start_time    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL,
	status        TEXT NOT NULL,
	error         TEXT
);`

// ensureSchema creates the metrics table if it does not exist. It never
// fails the caller beyond logging; a broken schema surfaces later as failed
// inserts.
func ensureSchema(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec(schema); err != nil {
		logger.Error("failed to initialize metrics schema", "error", err)
		return err
	}
	return nil
}

// isLocked reports whether err is SQLite's busy/locked condition, i.e. the
// store file is held by another connection or process.
func isLocked(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}
