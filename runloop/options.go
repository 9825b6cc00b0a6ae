// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package runloop

import (
	"errors"
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// DefaultJoinTimeout bounds how long the exit protocol waits for each live thread.
	DefaultJoinTimeout = time.Second

	// DefaultWorkConcurrency is the default number of concurrently running work batches.
	DefaultWorkConcurrency = 4
)

// processOptions holds configuration options for Process creation.
type processOptions struct {
	logger           *logiface.Logger[logiface.Event]
	diagnosticRates  map[time.Duration]int
	joinTimeout      time.Duration
	workConcurrency  int
	strictInvariants bool
}

// --- Process Options ---

// ProcessOption configures a Process instance.
type ProcessOption interface {
	applyProcess(*processOptions) error
}

// processOptionImpl implements ProcessOption.
type processOptionImpl struct {
	applyProcessFunc func(*processOptions) error
}

func (p *processOptionImpl) applyProcess(opts *processOptions) error {
	return p.applyProcessFunc(opts)
}

// WithLogger sets the structured logger used by the process, its threads and
// their loops. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) ProcessOption {
	return &processOptionImpl{func(opts *processOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithJoinTimeout sets the bound applied to joining each live thread during
// the exit protocol.
func WithJoinTimeout(timeout time.Duration) ProcessOption {
	return &processOptionImpl{func(opts *processOptions) error {
		if timeout <= 0 {
			return errors.New("runloop: join timeout must be positive")
		}
		opts.joinTimeout = timeout
		return nil
	}}
}

// WithWorkConcurrency sets the number of work batches allowed to run at once
// on the background pool backing [RunLoop.Work].
func WithWorkConcurrency(n int) ProcessOption {
	return &processOptionImpl{func(opts *processOptions) error {
		if n <= 0 {
			return errors.New("runloop: work concurrency must be positive")
		}
		opts.workConcurrency = n
		return nil
	}}
}

// WithStrictInvariants makes programming-invariant violations (reentrant
// Run, joining self, PostSync from a delayed self-callback, ...) panic,
// rather than being logged and reported as an error. Intended for tests and
// debug builds.
func WithStrictInvariants(enabled bool) ProcessOption {
	return &processOptionImpl{func(opts *processOptions) error {
		opts.strictInvariants = enabled
		return nil
	}}
}

// WithDiagnosticRates sets the per-category rate limits applied to benign
// diagnostics (posting to an aborted loop, and similar), as accepted by
// catrate.NewLimiter. A nil or empty map disables rate limiting.
func WithDiagnosticRates(rates map[time.Duration]int) ProcessOption {
	return &processOptionImpl{func(opts *processOptions) error {
		opts.diagnosticRates = rates
		return nil
	}}
}

// resolveProcessOptions applies ProcessOption instances to processOptions.
func resolveProcessOptions(opts []ProcessOption) (*processOptions, error) {
	cfg := &processOptions{
		joinTimeout:     DefaultJoinTimeout,
		workConcurrency: DefaultWorkConcurrency,
		diagnosticRates: map[time.Duration]int{
			time.Second: 5,
			time.Minute: 60,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyProcess(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
