// pkg/pnbst/tree.go
package pnbst

import "sync/atomic"

// Tree is a lock-free, persistent, leaf-oriented ordered map keyed on
// arbitrary byte slices. All exported methods are safe for concurrent
// use by any number of goroutines without external locking, mirroring
// the teacher's own CowBTree public method set (NewCowBTree,
// Get/Insert/Delete/Range, Close) adapted onto this protocol's
// descriptor-based multi-word CAS instead of copy-on-write.
type Tree struct {
	root      *Node
	counter   *versionCounter
	reclaimer *reclaimer
	stats     Stats

	closed int32
}

// NewTree builds an empty tree: a root internal dummy with a null
// routing key and two internal dummy children, each of which itself
// has a null key and two leaf dummies with null keys (spec section 3).
// Every sentinel is constructed at version 0 and pre-owned by
// dummyDescriptor, so none of them is ever mistaken for busy or
// logically removed.
func NewTree() *Tree {
	leftLeaf0 := newLeaf(nil, nil, 0)
	leftLeaf1 := newLeaf(nil, nil, 0)
	rightLeaf0 := newLeaf(nil, nil, 0)
	rightLeaf1 := newLeaf(nil, nil, 0)

	leftInternal := newInternal(nil, leftLeaf0, leftLeaf1, nil, 0)
	rightInternal := newInternal(nil, rightLeaf0, rightLeaf1, nil, 0)

	root := newInternal(nil, leftInternal, rightInternal, nil, 0)

	return &Tree{
		root:      root,
		counter:   &versionCounter{},
		reclaimer: newReclaimer(),
	}
}

func (t *Tree) isClosed() bool {
	return atomic.LoadInt32(&t.closed) == 1
}

// retire hands d to the reclaimer keyed on the counter's current value,
// then opportunistically reclaims anything that's now safe. Reclaiming
// on every commit (rather than on a separate timer or background
// goroutine) mirrors the teacher's own TryReclaim-on-checkpoint
// placement in pkg/cowbtree.
func (t *Tree) retire(d *Descriptor) {
	t.reclaimer.retire(d, t.counter.load())
	t.reclaimer.tryReclaim()
}

// Close marks the tree closed; subsequent operations return ErrClosed.
// It does not block on or wait for in-flight operations, matching the
// teacher's own non-blocking Close.
func (t *Tree) Close() error {
	atomic.StoreInt32(&t.closed, 1)
	return nil
}

// Stats returns a point-in-time snapshot of the tree's activity
// counters.
func (t *Tree) Stats() Stats {
	return t.stats.snapshot()
}
