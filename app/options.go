package app

import (
	"errors"

	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/logiface"
)

// DefaultEventBuffer is the default capacity of the platform event channel.
const DefaultEventBuffer = 256

type appOptions struct {
	logger      *logiface.Logger[logiface.Event]
	host        dispatch.Host
	render      func(Frame)
	keyTable    dispatch.KeyTable
	eventBuffer int
	strict      bool
}

// Option configures an App.
type Option interface {
	applyApp(*appOptions) error
}

type optionImpl struct {
	applyAppFunc func(*appOptions) error
}

func (o *optionImpl) applyApp(opts *appOptions) error {
	return o.applyAppFunc(opts)
}

// WithLogger overrides the logger built from the configuration.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *appOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithHost sets the platform host, receiving input method and back key
// requests.
func WithHost(host dispatch.Host) Option {
	return &optionImpl{func(opts *appOptions) error {
		opts.host = host
		return nil
	}}
}

// WithRenderer sets the function called for each frame, on the render
// loop with the UI lock held.
func WithRenderer(render func(Frame)) Option {
	return &optionImpl{func(opts *appOptions) error {
		opts.render = render
		return nil
	}}
}

// WithEventBuffer sets the capacity of the platform event channel.
func WithEventBuffer(n int) Option {
	return &optionImpl{func(opts *appOptions) error {
		if n <= 0 {
			return errors.New("app: event buffer must be positive")
		}
		opts.eventBuffer = n
		return nil
	}}
}

// WithStrictInvariants makes loop invariant violations panic.
func WithStrictInvariants(enabled bool) Option {
	return &optionImpl{func(opts *appOptions) error {
		opts.strict = enabled
		return nil
	}}
}

// WithKeyTable replaces the key table named by the configuration, for hosts
// reporting their own key codes.
func WithKeyTable(table dispatch.KeyTable) Option {
	return &optionImpl{func(opts *appOptions) error {
		opts.keyTable = table
		return nil
	}}
}
