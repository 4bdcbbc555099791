// pkg/pnbst/descriptor.go
package pnbst

import "sync/atomic"

// opState is a Descriptor's state machine value.
type opState int32

const (
	stateNull opState = iota
	stateTry
	stateCommit
	stateAbort
)

// Descriptor coordinates one in-progress update. It is published onto
// connectorNode.info by a single CAS (the operation's "install" step),
// then driven to a terminal state by help, possibly run by any number
// of cooperating threads. Once terminal, a Descriptor is never mutated
// again; everything in it besides state is set once at construction.
type Descriptor struct {
	state int32 // atomic opState

	connectorNode *Node // whose child pointer help will swing

	// Up to three victims to mark. Insert uses only first; delete uses
	// all three (parent, leaf, sibling). Unused slots are nil.
	firstMarkedNode  *Node
	secondMarkedNode *Node
	thirdMarkedNode  *Node

	// Expected info values used as CAS witnesses when marking the
	// corresponding victim above.
	firstMarkedOldInfo  *Descriptor
	secondMarkedOldInfo *Descriptor
	thirdMarkedOldInfo  *Descriptor

	newNode *Node // replacement subtree root installed as connectorNode's child

	handshakingSeq uint64 // counter value observed by the initiating operation

	counter *versionCounter // the owning Tree's counter, for handshaking
}

// dummyDescriptor is the shared, pre-terminal descriptor every freshly
// constructed node starts out owned by. Its state is ABORT so that a
// brand-new, unpublished node is never mistaken for "busy".
var dummyDescriptor = &Descriptor{state: int32(stateAbort)}

func (d *Descriptor) loadState() opState {
	return opState(atomic.LoadInt32(&d.state))
}

func (d *Descriptor) casState(old, new opState) bool {
	return atomic.CompareAndSwapInt32(&d.state, int32(old), int32(new))
}

// marks reports whether n is one of d's marked victims.
func (d *Descriptor) marks(n *Node) bool {
	return n != nil && (n == d.firstMarkedNode || n == d.secondMarkedNode || n == d.thirdMarkedNode)
}

// isFrozen reports whether d freezes the node it was loaded from: either
// the operation it describes is still in progress (NULL/TRY, requires
// help), or it committed and marks that node as logically removed.
func (d *Descriptor) isFrozen(owner *Node) bool {
	switch d.loadState() {
	case stateNull, stateTry:
		return true
	case stateCommit:
		return d.marks(owner)
	default: // stateAbort
		return false
	}
}

// markedSlots returns the (node, expectedOldInfo) pairs to process
// during the Marking phase of help, in order. Unused slots are returned
// with a nil node; callers skip them.
func (d *Descriptor) markedSlots() [3]struct {
	node    *Node
	oldInfo *Descriptor
} {
	return [3]struct {
		node    *Node
		oldInfo *Descriptor
	}{
		{d.firstMarkedNode, d.firstMarkedOldInfo},
		{d.secondMarkedNode, d.secondMarkedOldInfo},
		{d.thirdMarkedNode, d.thirdMarkedOldInfo},
	}
}
