package places

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed query is searched.
const DefaultDebounce = 400 * time.Millisecond

// Debouncer is a trailing-edge debouncer holding only the latest value.
// Every Submit restarts the timer; a superseded or cancelled timer never
// calls onFire, even if it had already expired when it was replaced.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
	pending T
	stopped bool
	onFire  func(T)
}

// NewDebouncer creates a debouncer calling onFire on its own goroutine.
func NewDebouncer[T any](delay time.Duration, onFire func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, onFire: onFire}
}

// Submit replaces the held value and restarts the quiet period.
func (d *Debouncer[T]) Submit(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.gen++
	gen := d.gen
	d.pending = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	value := d.pending
	var zero T
	d.pending = zero
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	d.onFire(value)
}

// Cancel drops the held value without firing.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Pending reports whether a value is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any held value and ignores later submissions.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer[T]) cancelLocked() {
	d.gen++
	var zero T
	d.pending = zero
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
