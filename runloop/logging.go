package runloop

import (
	"fmt"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// diagnostics classifies the three kinds of failure the package reports:
// tolerated races (debug, rate limited), invariant violations (crit, or a
// panic in strict mode), and task panics (err).
type diagnostics struct {
	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
	strict  bool
}

func newDiagnostics(opts *processOptions) *diagnostics {
	d := &diagnostics{
		logger: opts.logger,
		strict: opts.strictInvariants,
	}
	if len(opts.diagnosticRates) != 0 {
		d.limiter = catrate.NewLimiter(opts.diagnosticRates)
	}
	return d
}

// benign returns a debug builder for a tolerated race, or nil if the
// category is currently rate limited. The caller must Log the result.
func (d *diagnostics) benign(category string) *logiface.Builder[logiface.Event] {
	if d == nil || d.logger == nil {
		return nil
	}
	if d.limiter != nil {
		if _, ok := d.limiter.Allow(category); !ok {
			return nil
		}
	}
	return d.logger.Debug().Str(`category`, category)
}

// invariant reports a programming error. It returns err, unless strict mode
// is enabled, in which case it panics with it.
func (d *diagnostics) invariant(err error, msg string) error {
	if d == nil {
		return err
	}
	d.logger.Crit().Err(err).Log(msg)
	if d.strict {
		panic(fmt.Errorf("%s: %w", msg, err))
	}
	return err
}

// panicked logs a recovered task panic.
func (d *diagnostics) panicked(err PanicError) {
	if d == nil {
		return
	}
	d.logger.Err().Err(err).Str(`task`, err.Name).Log(`task panicked`)
}

// safeCall runs fn, recovering and logging any panic, which is reported
// back to the caller.
func (d *diagnostics) safeCall(name string, fn func()) (recovered bool) {
	if fn == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			recovered = true
			d.panicked(PanicError{Value: r, Name: name})
		}
	}()
	fn()
	return false
}
