package errs

import (
	"errors"
	"fmt"
	"log/slog"
)

// Wrap annotates err while keeping the chain intact for errors.Is/As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	args = append(args, err)
	return fmt.Errorf(format+": %w", args...)
}

// Loggable exposes an error as structured slog fields.
// Usage: slog.Any("err", errs.Loggable(err))
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

type loggable struct{ err error }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}
	return slog.GroupValue(
		slog.String("message", l.err.Error()),
		slog.Any("chain", Chain(l.err)),
	)
}

// Chain returns the unwrap chain outer-to-inner.
func Chain(err error) []string {
	if err == nil {
		return nil
	}
	out := make([]string, 0, 4)
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, e.Error())
	}
	return out
}
