// Package barrier implements the engine's task barrier: a process-wide
// counter of in-flight asynchronous operations that releases a FIFO queue of
// continuations once the counter drops to zero.
//
// The barrier is what lets pipeline code read as straight-line composition
// ("match, then pipe, then dest") while the I/O underneath stays
// asynchronous: every outstanding read, write, or exec call holds the
// barrier raised with a Begin/End pair, and Then registers what should run
// once nothing is outstanding.
package barrier

import (
	"sync"

	"github.com/flowforge/flowforge/pkg/logging"
)

// Token identifies one outstanding Begin/End pair. It carries no meaning
// beyond its identity; it exists so that End can be matched against its
// Begin without requiring callers to track counts themselves.
type Token uint64

// Continuation is something a Barrier runs once the outstanding-operation
// count reaches zero. Exactly one of Sync or Async is non-nil; use the Sync
// or Async constructors rather than building a Continuation by hand.
type Continuation struct {
	sync  func()
	async func(done func())
}

// Sync builds a Continuation that completes as soon as fn returns. This
// corresponds to distilled-spec "cb takes no done callback" case.
func Sync(fn func()) Continuation {
	return Continuation{sync: fn}
}

// Async builds a Continuation that holds the barrier raised until done is
// invoked, for the case where a callback signals completion asynchronously
// rather than returning; Go has no arity introspection, so the caller
// states the mode explicitly by choosing Sync or Async instead.
func Async(fn func(done func())) Continuation {
	return Continuation{async: fn}
}

// Barrier is the process-wide liveness signal tracking how many async
// operations are still outstanding. The zero value is not usable; construct
// one with New.
type Barrier struct {
	mu          sync.Mutex
	outstanding int64
	nextToken   Token
	queue       []Continuation
	logger      *logging.Logger
	draining    bool
}

// New creates a Barrier that logs recovered continuation panics through the
// given logger. A nil logger is replaced with logging.Discard().
func New(logger *logging.Logger) *Barrier {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Barrier{logger: logger}
}

// Begin raises the barrier by one and returns a Token to hand to End. label
// and args are informational only and are forwarded to the logger at debug
// level; they let barrier usage double as a lightweight progress trace.
func (b *Barrier) Begin(label string, args ...any) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outstanding++
	b.nextToken++
	token := b.nextToken
	b.logger.Debugf("barrier: begin %s (token %d, outstanding %d)", logging.Format(label, args...), token, b.outstanding)
	return token
}

// End lowers the barrier by one. If the outstanding count reaches zero, the
// queued continuations run in FIFO order on the calling goroutine. A
// continuation that itself calls Begin keeps the barrier raised past this
// End call, so draining can legitimately re-enter this method.
func (b *Barrier) End(_ Token) {
	b.mu.Lock()
	if b.outstanding == 0 {
		b.mu.Unlock()
		return
	}
	b.outstanding--
	shouldDrain := b.outstanding == 0 && !b.draining
	b.mu.Unlock()

	if shouldDrain {
		b.drain()
	}
}

// Then enqueues a continuation. If the barrier is already at zero, it runs
// immediately (still honoring the sync/async distinction); otherwise it
// waits in the FIFO queue for the next time the counter reaches zero.
func (b *Barrier) Then(c Continuation) {
	b.mu.Lock()
	if b.outstanding == 0 && !b.draining {
		b.mu.Unlock()
		b.run(c)
		return
	}
	b.queue = append(b.queue, c)
	b.mu.Unlock()
}

// Outstanding reports the current number of unmatched Begin calls. It is
// intended for diagnostics and tests, not for control flow.
func (b *Barrier) Outstanding() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding
}

func (b *Barrier) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	b.mu.Unlock()

	for {
		b.mu.Lock()
		if len(b.queue) == 0 || b.outstanding != 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		next := b.queue[0]
		b.queue = b.queue[1:]
		b.mu.Unlock()

		b.run(next)
	}
}

func (b *Barrier) run(c Continuation) {
	var done func()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("barrier: continuation panicked: %v", r)
			if done != nil {
				done()
			}
		}
	}()

	if c.sync != nil {
		c.sync()
		return
	}

	token := b.Begin("continuation")
	var once sync.Once
	done = func() { once.Do(func() { b.End(token) }) }
	c.async(done)
}
