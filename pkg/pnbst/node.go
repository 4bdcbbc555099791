// pkg/pnbst/node.go
package pnbst

import (
	"bytes"
	"sync/atomic"
	"unsafe"
)

// Node is a node of the leaf-oriented, persistent binary search tree.
// Keys live only in leaves; internal nodes carry a routing key and two
// children. A node's child pointers, once published, are only ever
// swung by a descriptor commit (help), never mutated in place; readers
// walk prevNode to recover the version that existed at an older
// sequence.
//
// Child and info slots are unsafe.Pointer so a single CAS can publish
// or mark them, the same mechanism the teacher uses for CowNode's
// children/next/prev slots.
type Node struct {
	key   []byte // nil == sentinel ("-infinity")
	value []byte // set on leaves only

	leftChild  unsafe.Pointer // *Node, nil on leaves
	rightChild unsafe.Pointer // *Node, nil on leaves

	prevNode *Node // immutable: the node this one replaced at its tree position

	info unsafe.Pointer // *Descriptor, atomically updated

	versionSeq uint64 // immutable: counter value observed at construction
}

// setInitialInfo stores d as n's info with a plain write; it is used to
// seed freshly constructed nodes before they're published.
func (n *Node) setInitialInfo(d *Descriptor) {
	n.info = unsafe.Pointer(d)
}

func (n *Node) loadInfo() *Descriptor {
	return (*Descriptor)(atomic.LoadPointer(&n.info))
}

func (n *Node) casInfo(old, new *Descriptor) bool {
	return atomic.CompareAndSwapPointer(&n.info, unsafe.Pointer(old), unsafe.Pointer(new))
}

func (n *Node) loadLeft() *Node {
	return (*Node)(atomic.LoadPointer(&n.leftChild))
}

func (n *Node) loadRight() *Node {
	return (*Node)(atomic.LoadPointer(&n.rightChild))
}

func (n *Node) casLeft(old, new *Node) bool {
	return atomic.CompareAndSwapPointer(&n.leftChild, unsafe.Pointer(old), unsafe.Pointer(new))
}

func (n *Node) casRight(old, new *Node) bool {
	return atomic.CompareAndSwapPointer(&n.rightChild, unsafe.Pointer(old), unsafe.Pointer(new))
}

// IsLeaf reports whether n is a leaf, defined by leftChild == nil.
func (n *Node) IsLeaf() bool {
	return atomic.LoadPointer(&n.leftChild) == nil
}

// compareKeys orders keys with nil treated as -infinity, so sentinel
// keys always sort below any real (non-nil) key.
func compareKeys(a, b []byte) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return bytes.Compare(a, b)
}

func keysEqual(a, b []byte) bool {
	return compareKeys(a, b) == 0
}

// routesLeft reports whether key belongs in the left subtree of a node
// whose routing key is routingKey: left when key < routingKey, right
// otherwise. A nil routingKey (sentinel, -infinity) always routes right.
func routesLeft(key, routingKey []byte) bool {
	return compareKeys(key, routingKey) < 0
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// newLeaf builds a fresh, unpublished leaf carrying key/value at versionSeq.
func newLeaf(key, value []byte, versionSeq uint64) *Node {
	n := &Node{
		key:        key,
		value:      value,
		versionSeq: versionSeq,
	}
	n.setInitialInfo(dummyDescriptor)
	return n
}

// newInternal builds a fresh, unpublished internal node routing on key,
// with the given children, replacing prev at its tree position.
func newInternal(key []byte, left, right, prev *Node, versionSeq uint64) *Node {
	n := &Node{
		key:        key,
		prevNode:   prev,
		versionSeq: versionSeq,
		leftChild:  unsafe.Pointer(left),
		rightChild: unsafe.Pointer(right),
	}
	n.setInitialInfo(dummyDescriptor)
	return n
}

// readChild returns the child of parent (left if left, else right) that
// existed at sequence seq, walking prevNode backward past any node
// created after seq. This is what lets a search or scan bound to seq
// see a logically frozen version of the tree without blocking writers.
func readChild(parent *Node, left bool, seq uint64) *Node {
	var child *Node
	if left {
		child = parent.loadLeft()
	} else {
		child = parent.loadRight()
	}
	for child != nil && child.versionSeq > seq {
		child = child.prevNode
	}
	return child
}
