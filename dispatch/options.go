package dispatch

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// DefaultClickThreshold is the distance, in logical units, a gesture may
// drift before it no longer counts as a click.
const DefaultClickThreshold = 2

type dispatcherOptions struct {
	logger          *logiface.Logger[logiface.Event]
	host            Host
	uiLock          sync.Locker
	keyTable        KeyTable
	diagnosticRates map[time.Duration]int
	clickThreshold  float64
	deviceScale     float64
}

// Option configures a Dispatcher.
type Option interface {
	applyDispatcher(*dispatcherOptions) error
}

type optionImpl struct {
	applyDispatcherFunc func(*dispatcherOptions) error
}

func (o *optionImpl) applyDispatcher(opts *dispatcherOptions) error {
	return o.applyDispatcherFunc(opts)
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithHost sets the platform glue receiving input method and back requests.
func WithHost(host Host) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.host = host
		return nil
	}}
}

// WithUILock sets the lock held for the duration of every dispatch job,
// shared with whatever lays out and paints the view tree.
func WithUILock(lock sync.Locker) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.uiLock = lock
		return nil
	}}
}

// WithClickThreshold sets how far, in logical units, a touch or a pressed
// view may move before the gesture stops being a click.
func WithClickThreshold(threshold float64) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			return errors.New("dispatch: click threshold must be a non-negative number")
		}
		opts.clickThreshold = threshold
		return nil
	}}
}

// WithDeviceScale sets the number of platform pixels per logical unit.
// Coordinates received from the platform are divided by it.
func WithDeviceScale(scale float64) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		if !(scale > 0) || math.IsInf(scale, 0) {
			return errors.New("dispatch: device scale must be positive")
		}
		opts.deviceScale = scale
		return nil
	}}
}

// WithKeyTable sets the platform key code table used to decode keyboard
// input.
func WithKeyTable(table KeyTable) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.keyTable = table
		return nil
	}}
}

// WithDiagnosticRates sets the per-category rate limits applied to warnings
// about dropped input, as accepted by catrate.NewLimiter. A nil or empty map
// disables rate limiting.
func WithDiagnosticRates(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *dispatcherOptions) error {
		opts.diagnosticRates = rates
		return nil
	}}
}

func resolveOptions(opts []Option) (*dispatcherOptions, error) {
	cfg := &dispatcherOptions{
		clickThreshold: DefaultClickThreshold,
		deviceScale:    1,
		diagnosticRates: map[time.Duration]int{
			time.Second: 10,
		},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyDispatcher(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.host == nil {
		cfg.host = nopHost{}
	}
	if cfg.uiLock == nil {
		cfg.uiLock = new(sync.Mutex)
	}
	if cfg.keyTable == nil {
		cfg.keyTable = LinuxKeyTable()
	}
	return cfg, nil
}
