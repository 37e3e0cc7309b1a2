package recentlog

import (
	"errors"
	"sync"
	"sync/atomic"

	"helix/infra/alist"
)

// Sized is the only requirement on a record: a byte-size estimate
// covering the record and any substructures it owns. It should be
// positive, but this is intentionally not enforced.
type Sized interface {
	MemoryUsage() uint64
}

var ErrBadConfig = errors.New("recentlog: memoryThreshold must be > 0 and capacity must be >= 2")

// Log is a nearly lock-free bounded log of recent records. Producers
// prepend to the active list; once the active list has accounted
// memoryThreshold bytes, one producer rotates it into a fixed ring of
// frozen lists and the list evicted from the ring is queued for
// deferred release. The steady-state memory bound is
// memoryThreshold * (capacity + 1) (the active list plus capacity
// frozen lists), with a small accepted overshoot from producers that
// prepend while a rotation is in flight.
type Log[T Sized] struct {
	active   atomic.Pointer[alist.List[T]]
	memory   atomic.Uint64
	_pad     [56]byte // keep the rotation gate off the counter's cache line
	rotating atomic.Bool

	mu      sync.Mutex // guards history, trash, pos
	history []*alist.List[T]
	trash   []*alist.List[T]
	pos     int

	threshold uint64
	capacity  int
}

// New constructs a log bounded by memoryThreshold bytes per list and
// capacity frozen lists in the history ring.
func New[T Sized](memoryThreshold uint64, capacity int) (*Log[T], error) {
	if memoryThreshold == 0 || capacity < 2 {
		return nil, ErrBadConfig
	}
	l := &Log[T]{
		history:   make([]*alist.List[T], capacity),
		threshold: memoryThreshold,
		capacity:  capacity,
	}
	l.active.Store(alist.New[T]())
	return l, nil
}

// Append moves a record into the log. It never fails; the record is
// accounted against the active list and may trigger a rotation.
func (l *Log[T]) Append(v T) {
	size := v.MemoryUsage()

	// This load may observe a list that a concurrent rotation is about
	// to freeze. Prepending to it is fine: the record simply lands in
	// the frozen list's tail, and its bytes are counted against
	// whichever list is active when the Add below runs.
	cur := l.active.Load()
	cur.Prepend(v)

	if l.memory.Add(size) >= l.threshold {
		l.tryRotate(cur)
	}
}

// tryRotate freezes expected and promotes a fresh active list.
// For a given instance of the active list exactly one producer wins:
// the rotating gate admits one thread, and the identity recheck turns
// away a winner whose expectation is already stale.
func (l *Log[T]) tryRotate(expected *alist.List[T]) {
	if !l.rotating.CompareAndSwap(false, true) {
		return
	}

	if l.active.Load() != expected {
		l.rotating.Store(false)
		return
	}

	// Reset the counter first so other producers stop trying to
	// trigger rotations for the outgoing list.
	l.memory.Store(0)

	l.active.Store(alist.New[T]())

	// The mutex only fences Scan and DrainTrash; other producers
	// cannot reach this block while the gate is held.
	l.mu.Lock()
	evicted := l.history[l.pos]
	l.history[l.pos] = expected
	l.pos = (l.pos + 1) % l.capacity
	if evicted != nil {
		l.trash = append(l.trash, evicted)
	}
	l.mu.Unlock()

	l.rotating.Store(false)
}

// Scan calls fn for every live record, newest first: the active list,
// then the frozen lists from the most recently rotated to the oldest.
// Each visited list is a stable snapshot taken when the scan reaches
// that list; records prepended to it afterwards are not seen. The internal mutex is held only
// while the at most capacity+1 list references are copied out.
func (l *Log[T]) Scan(fn func(*T)) {
	snaps := make([]*alist.List[T], 0, l.capacity+1)

	l.mu.Lock()
	snaps = append(snaps, l.active.Load())
	for i := 0; i < l.capacity; i++ {
		pos := (l.pos + l.capacity - 1 - i) % l.capacity
		if l.history[pos] != nil {
			snaps = append(snaps, l.history[pos])
		}
	}
	l.mu.Unlock()

	for _, list := range snaps {
		for n := list.Snapshot(); n != nil; n = n.Next() {
			fn(n.Value())
		}
	}
}

// DrainTrash releases every list evicted from the history ring since
// the previous drain and reports how many were released. Meant for a
// cleanup goroutine, not the append path.
func (l *Log[T]) DrainTrash() int {
	l.mu.Lock()
	freed := len(l.trash)
	l.trash = nil
	l.mu.Unlock()
	return freed
}
