package alist

import "sync/atomic"

// Node holds one record and a link to the next older node.
// Once a node is linked its next pointer never changes, so a chain
// obtained from Snapshot can be walked without synchronization.
type Node[T any] struct {
	data T
	next *Node[T]
}

// Value returns a pointer to the record stored in the node.
// The record must be treated as read-only by snapshot consumers.
func (n *Node[T]) Value() *T {
	return &n.data
}

// Next returns the next older node, or nil at the end of the chain.
func (n *Node[T]) Next() *Node[T] {
	return n.next
}

// List is a lock-free singly linked list. It only grows, by
// prepending at the head, and is released whole: nodes are never
// freed or mutated individually. The zero value is an empty list.
type List[T any] struct {
	head atomic.Pointer[Node[T]]
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Prepend publishes a new node holding v as the head of the list.
// The CAS linearizes the prepend; on failure the reloaded head is the
// one another prepend just published.
func (l *List[T]) Prepend(v T) {
	n := &Node[T]{data: v}
	for {
		old := l.head.Load()
		n.next = old
		if l.head.CompareAndSwap(old, n) {
			return
		}
	}
}

// Snapshot returns the current head of the list. The returned chain
// is stable for as long as the caller keeps the list reachable;
// prepends that race with the snapshot are simply not part of it.
func (l *List[T]) Snapshot() *Node[T] {
	return l.head.Load()
}
