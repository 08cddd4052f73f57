package clickthrough

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultInterval is one evaluation per typical display frame.
const DefaultInterval = 16 * time.Millisecond

// ErrWatcherAborted is returned by Run when a tick panicked. The window is
// left in Passthrough when this happens.
var ErrWatcherAborted = errors.New("click-through watcher aborted")

// State is the window's input-transparency mode.
type State int32

const (
	// Passthrough: the window ignores the cursor and clicks reach whatever is below.
	Passthrough State = iota
	// Intercept: the window receives clicks.
	Intercept
)

func (s State) String() string {
	switch s {
	case Passthrough:
		return "passthrough"
	case Intercept:
		return "intercept"
	default:
		return "unknown"
	}
}

// IgnoresCursor is the value handed to Toggler.SetClickThrough for this state.
func (s State) IgnoresCursor() bool {
	return s == Passthrough
}

// CursorSource reports the global cursor position in screen coordinates.
// ok is false when the position could not be read this time.
type CursorSource interface {
	CursorPosition() (x, y float64, ok bool)
}

// Toggler switches the window between ignoring and receiving cursor input.
type Toggler interface {
	SetClickThrough(ignore bool) error
}

// ToggleFunc adapts a function to Toggler.
type ToggleFunc func(ignore bool) error

// SetClickThrough calls f.
func (f ToggleFunc) SetClickThrough(ignore bool) error {
	return f(ignore)
}

// Observer is notified of every recorded state change, on the watcher goroutine.
// Implementations must not block.
type Observer interface {
	StateChanged(from, to State, at time.Time)
}

// Options tune a Watcher. Zero values select the defaults.
type Options struct {
	Interval time.Duration
	Logger   *zap.Logger
	Observer Observer

	// FailureWarnThreshold emits a throttled warning once this many
	// consecutive cursor or toggle failures have been seen. 0 disables it.
	FailureWarnThreshold int
	WarnEvery            time.Duration

	Now func() time.Time
}

// Watcher polls the cursor and flips the window's click-through mode when
// the cursor enters or leaves the pet region. All state below the atomics
// is owned by the goroutine calling Tick or Run.
type Watcher struct {
	bounds   *BoundsStore
	cursor   CursorSource
	toggler  Toggler
	log      *zap.Logger
	observer Observer
	now      func() time.Time

	interval        atomic.Int64
	intervalChanged chan struct{}
	paused          atomic.Bool
	current         atomic.Int32

	state          State
	pauseApplied   bool
	cursorFailures int
	toggleFailures int
	warnThreshold  int
	cursorWarn     rate.Sometimes
	toggleWarn     rate.Sometimes
}

// NewWatcher creates a watcher in the Passthrough state. It does not touch
// the window until the first transition.
func NewWatcher(bounds *BoundsStore, cursor CursorSource, toggler Toggler, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WarnEvery <= 0 {
		opts.WarnEvery = time.Minute
	}

	w := &Watcher{
		bounds:          bounds,
		cursor:          cursor,
		toggler:         toggler,
		log:             opts.Logger,
		observer:        opts.Observer,
		now:             opts.Now,
		intervalChanged: make(chan struct{}, 1),
		state:           Passthrough,
		warnThreshold:   opts.FailureWarnThreshold,
		cursorWarn:      rate.Sometimes{Interval: opts.WarnEvery},
		toggleWarn:      rate.Sometimes{Interval: opts.WarnEvery},
	}
	w.interval.Store(int64(opts.Interval))
	w.current.Store(int32(Passthrough))
	return w
}

// State returns the last recorded transparency state. Safe from any goroutine.
func (w *Watcher) State() State {
	return State(w.current.Load())
}

// Interval returns the current poll period.
func (w *Watcher) Interval() time.Duration {
	return time.Duration(w.interval.Load())
}

// SetInterval changes the poll period. A running loop picks it up immediately.
func (w *Watcher) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	if time.Duration(w.interval.Swap(int64(d))) == d {
		return
	}
	select {
	case w.intervalChanged <- struct{}{}:
	default:
	}
}

// SetPaused suspends hit testing. While paused the window is held in
// Intercept so the whole window is usable; resuming re-evaluates on the next tick.
func (w *Watcher) SetPaused(paused bool) {
	w.paused.Store(paused)
}

// Paused reports whether hit testing is suspended.
func (w *Watcher) Paused() bool {
	return w.paused.Load()
}

// Run evaluates a tick after every interval until ctx is done. It returns
// nil on cancellation and ErrWatcherAborted if a tick panicked.
func (w *Watcher) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.abort(r)
			err = fmt.Errorf("%w: %v", ErrWatcherAborted, r)
		}
	}()

	w.log.Info("click-through watcher started", zap.Duration("interval", w.Interval()))

	timer := time.NewTimer(w.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("click-through watcher stopped", zap.Stringer("state", w.state))
			return nil
		case <-w.intervalChanged:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.Interval())
			w.log.Debug("poll interval changed", zap.Duration("interval", w.Interval()))
		case <-timer.C:
			w.Tick()
			timer.Reset(w.Interval())
		}
	}
}

// Tick performs one evaluation without waiting.
func (w *Watcher) Tick() {
	if w.paused.Load() {
		if !w.pauseApplied {
			w.pauseApplied = true
			w.apply(Intercept)
		}
		return
	}
	w.pauseApplied = false

	x, y, ok := w.cursor.CursorPosition()
	if !ok {
		w.cursorFailed()
		return
	}
	w.cursorFailures = 0

	region := w.bounds.Snapshot()
	next := Passthrough
	if region.Contains(x, y) {
		next = Intercept
	}
	w.apply(next)
}

// apply records next and issues one toggle if it differs from the current state.
func (w *Watcher) apply(next State) {
	prev := w.state
	if next == prev {
		return
	}

	if err := w.toggler.SetClickThrough(next.IgnoresCursor()); err != nil {
		w.toggleFailed(err)
	} else {
		w.toggleFailures = 0
	}

	w.state = next
	w.current.Store(int32(next))
	w.log.Debug("click-through state changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	if w.observer != nil {
		w.observer.StateChanged(prev, next, w.now())
	}
}

func (w *Watcher) cursorFailed() {
	w.cursorFailures++
	w.log.Debug("cursor position unavailable", zap.Int("streak", w.cursorFailures))
	if w.warnThreshold > 0 && w.cursorFailures >= w.warnThreshold {
		streak := w.cursorFailures
		w.cursorWarn.Do(func() {
			w.log.Warn("cursor position has been unavailable", zap.Int("consecutive_failures", streak))
		})
	}
}

func (w *Watcher) toggleFailed(err error) {
	w.toggleFailures++
	w.log.Debug("set click-through failed", zap.Error(err), zap.Int("streak", w.toggleFailures))
	if w.warnThreshold > 0 && w.toggleFailures >= w.warnThreshold {
		streak := w.toggleFailures
		w.toggleWarn.Do(func() {
			w.log.Warn("set click-through keeps failing", zap.Error(err), zap.Int("consecutive_failures", streak))
		})
	}
}

// abort leaves the window in Passthrough after a panicked tick.
func (w *Watcher) abort(recovered any) {
	w.log.Error("click-through watcher panicked, falling back to passthrough",
		zap.Any("panic", recovered),
		zap.ByteString("stack", debug.Stack()),
	)

	func() {
		defer func() { _ = recover() }()
		if err := w.toggler.SetClickThrough(true); err != nil {
			w.log.Warn("fallback to passthrough failed", zap.Error(err))
		}
	}()

	prev := w.state
	w.state = Passthrough
	w.current.Store(int32(Passthrough))
	if w.observer != nil && prev != Passthrough {
		func() {
			defer func() { _ = recover() }()
			w.observer.StateChanged(prev, Passthrough, w.now())
		}()
	}
}
