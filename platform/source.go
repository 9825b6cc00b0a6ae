package platform

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/joeycumines/go-longpoll"
	"github.com/joeycumines/logiface"
)

// DefaultBatchSize is the default maximum number of values received per
// wake.
const DefaultBatchSize = 64

// ChannelSource is a [runloop.EventSource] fed by a channel. While the loop
// runs, a receiver goroutine long polls the channel, buffers each batch, and
// wakes the loop, which hands the buffered values to the handler on its own
// thread.
//
// Values received but not yet drained when the loop stops are kept for the
// next run. Once the channel is closed and drained, Closed reports true.
type ChannelSource[T any] struct {
	ch      <-chan T
	handler func(T)
	logger  *logiface.Logger[logiface.Event]
	poll    longpoll.ChannelConfig

	mu      sync.Mutex
	pending []T
	cancel  context.CancelFunc
	done    chan struct{}
	eof     bool
	closed  bool
}

// SourceOption configures a ChannelSource.
type SourceOption interface {
	applySource(*sourceOptions) error
}

type sourceOptions struct {
	logger    *logiface.Logger[logiface.Event]
	batchSize int
}

type sourceOptionImpl struct {
	applySourceFunc func(*sourceOptions) error
}

func (s *sourceOptionImpl) applySource(opts *sourceOptions) error {
	return s.applySourceFunc(opts)
}

// WithLogger sets the logger, used for lifecycle messages.
func WithLogger(logger *logiface.Logger[logiface.Event]) SourceOption {
	return &sourceOptionImpl{func(opts *sourceOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithBatchSize bounds the number of values received per wake.
func WithBatchSize(n int) SourceOption {
	return &sourceOptionImpl{func(opts *sourceOptions) error {
		if n <= 0 {
			return errors.New("platform: batch size must be positive")
		}
		opts.batchSize = n
		return nil
	}}
}

// NewChannelSource returns a source delivering the values sent on ch to
// handler.
func NewChannelSource[T any](ch <-chan T, handler func(T), opts ...SourceOption) (*ChannelSource[T], error) {
	if ch == nil || handler == nil {
		return nil, errors.New("platform: nil channel or handler")
	}
	cfg := sourceOptions{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applySource(&cfg); err != nil {
			return nil, err
		}
	}
	return &ChannelSource[T]{
		ch:      ch,
		handler: handler,
		logger:  cfg.logger,
		poll: longpoll.ChannelConfig{
			MaxSize: cfg.batchSize,
			// deliver as soon as anything arrives, batching only what is
			// already buffered
			MinSize:        1,
			PartialTimeout: -1,
		},
	}, nil
}

// Start implements [runloop.EventSource].
func (s *ChannelSource[T]) Start(wake func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("platform: source already started")
	}
	if s.eof {
		// keep whatever is pending deliverable
		if len(s.pending) != 0 {
			wake()
		}
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.receive(ctx, wake, s.done)
	return nil
}

func (s *ChannelSource[T]) receive(ctx context.Context, wake func(), done chan struct{}) {
	defer close(done)
	for {
		err := longpoll.Channel(ctx, &s.poll, s.ch, func(v T) error {
			s.mu.Lock()
			s.pending = append(s.pending, v)
			s.mu.Unlock()
			return nil
		})
		switch {
		case err == nil:
			wake()
		case errors.Is(err, io.EOF):
			s.mu.Lock()
			s.eof = true
			s.mu.Unlock()
			s.logger.Debug().Log(`event channel closed`)
			wake()
			return
		default:
			// canceled by Stop
			return
		}
	}
}

// Drain implements [runloop.EventSource].
func (s *ChannelSource[T]) Drain() bool {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	if s.eof && len(pending) == 0 {
		s.closed = true
	}
	s.mu.Unlock()
	for _, v := range pending {
		s.handler(v)
	}
	return len(pending) != 0
}

// Stop implements [runloop.EventSource]. It waits for the receiver to
// exit, which never blocks on the channel.
func (s *ChannelSource[T]) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Pending returns the number of received values not yet drained.
func (s *ChannelSource[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Closed reports whether the channel was closed and every value drained.
func (s *ChannelSource[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
