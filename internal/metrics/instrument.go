package metrics

import (
	"fmt"
	"log/slog"
	"time"
)

// Instrument wraps fn so that every invocation records one metric: start
// time, wall-clock duration and outcome. The wrapped function's contract is
// untouched -- its result and error pass through unchanged, and a panic is
// recorded and then re-panicked as-is.
func Instrument[T any](r *Recorder, name string, fn func() (T, error)) func() (T, error) {
	return func() (T, error) {
		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				r.Record(name, start, time.Now(), StatusError, fmt.Sprintf("panic: %v", p))
				panic(p)
			}
		}()

		result, err := fn()
		end := time.Now()
		if err != nil {
			r.Record(name, start, end, StatusError, err.Error())
		} else {
			r.Record(name, start, end, StatusSuccess, "")
		}
		return result, err
	}
}

// InstrumentFunc is Instrument for functions that only return an error.
func InstrumentFunc(r *Recorder, name string, fn func() error) func() error {
	wrapped := Instrument(r, name, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return func() error {
		_, err := wrapped()
		return err
	}
}

// Wrap instruments fn against the process-wide default store.
func Wrap[T any](name string, fn func() (T, error)) func() (T, error) {
	return Instrument(NewRecorder(Default(), slog.Default()), name, fn)
}

// WrapFunc instruments an error-only fn against the default store.
func WrapFunc(name string, fn func() error) func() error {
	return InstrumentFunc(NewRecorder(Default(), slog.Default()), name, fn)
}
