package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IliaW/lead-hunter/internal/model"
)

var (
	ErrNotPersisted      = errors.New("application was not persisted by any sink")
	ErrSinkNotConfigured = errors.New("sink is not configured")
)

// Sink appends one scored application to a store. Stores are append-only.
type Sink interface {
	Name() string
	Append(ctx context.Context, app *model.ScoredApplication) error
}

type PersistenceError struct {
	Sink string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SinkChain tries its sinks in order. The first successful append wins.
type SinkChain struct {
	sinks []Sink
}

func NewSinkChain(sinks ...Sink) *SinkChain {
	return &SinkChain{sinks: sinks}
}

// Primary is the name of the first sink, or "" for an empty chain.
func (c *SinkChain) Primary() string {
	if len(c.sinks) == 0 {
		return ""
	}
	return c.sinks[0].Name()
}

// Append returns the name of the sink that stored the application. When every sink fails
// the error wraps ErrNotPersisted and each PersistenceError.
func (c *SinkChain) Append(ctx context.Context, app *model.ScoredApplication) (string, error) {
	errs := make([]error, 0, len(c.sinks))
	for _, s := range c.sinks {
		err := s.Append(ctx, app)
		if err == nil {
			slog.Debug("application persisted.", slog.String("sink", s.Name()), slog.String("id", app.ID))
			return s.Name(), nil
		}
		perr := &PersistenceError{Sink: s.Name(), Err: err}
		slog.Warn("sink failed, trying the next one.", slog.String("err", perr.Error()))
		errs = append(errs, perr)
	}

	return "", fmt.Errorf("%w: %w", ErrNotPersisted, errors.Join(errs...))
}
