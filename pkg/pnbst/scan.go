// pkg/pnbst/scan.go
package pnbst

import "sync"

// valueBuffer is a thread-local-style scratch stack for scan results: a
// growable slice that starts at 128 entries and doubles, reused across
// calls via a sync.Pool rather than a true per-goroutine local (spec
// section 5 permits either; Go has no per-goroutine storage to hook
// into, so pooling is the idiomatic substitute).
type valueBuffer struct {
	vals [][]byte
}

func newValueBuffer() *valueBuffer {
	return &valueBuffer{vals: make([][]byte, 0, 128)}
}

func (b *valueBuffer) push(v []byte) {
	if len(b.vals) == cap(b.vals) {
		newCap := cap(b.vals) * 2
		if newCap == 0 {
			newCap = 128
		}
		grown := make([][]byte, len(b.vals), newCap)
		copy(grown, b.vals)
		b.vals = grown
	}
	b.vals = append(b.vals, v)
}

func (b *valueBuffer) reset() {
	b.vals = b.vals[:0]
}

var scanBufferPool = sync.Pool{
	New: func() interface{} { return newValueBuffer() },
}

// RangeScan returns, in ascending key order, the values of every key in
// [a, b] as of a version frozen at the moment of the call. It bumps the
// version counter once up front and never blocks on or is blocked by
// any concurrent point operation (spec section 4.7).
func (t *Tree) RangeScan(a, b []byte) ([][]byte, error) {
	if a == nil || b == nil {
		return nil, ErrNilKey
	}
	if compareKeys(a, b) > 0 {
		return nil, ErrInvalidRange
	}
	if t.isClosed() {
		return nil, ErrClosed
	}

	seq := t.counter.advance()
	guard := t.reclaimer.enter(seq)
	defer guard.leave()

	buf := scanBufferPool.Get().(*valueBuffer)
	buf.reset()
	defer scanBufferPool.Put(buf)

	scanNode(t.root, a, b, seq, buf)

	result := make([][]byte, len(buf.vals))
	copy(result, buf.vals)
	t.stats.bumpRangeScan()
	return result, nil
}

// scanNode recurses from n, appending to buf the value of every leaf in
// [a, b] reachable at sequence seq, helping any busy internal
// descriptor it passes through along the way.
func scanNode(n *Node, a, b []byte, seq uint64, buf *valueBuffer) {
	if n.IsLeaf() {
		if n.key != nil && compareKeys(n.key, a) >= 0 && compareKeys(n.key, b) <= 0 {
			buf.push(copyBytes(n.value))
		}
		return
	}

	d := n.loadInfo()
	switch d.loadState() {
	case stateNull, stateTry:
		help(d)
	}

	if compareKeys(a, n.key) >= 0 {
		if right := readChild(n, false, seq); right != nil {
			scanNode(right, a, b, seq, buf)
		}
		return
	}
	if compareKeys(b, n.key) < 0 {
		if left := readChild(n, true, seq); left != nil {
			scanNode(left, a, b, seq, buf)
		}
		return
	}
	if left := readChild(n, true, seq); left != nil {
		scanNode(left, a, b, seq, buf)
	}
	if right := readChild(n, false, seq); right != nil {
		scanNode(right, a, b, seq, buf)
	}
}

// Snapshot pins the current version sequence so a caller can issue
// several point lookups or range scans against one consistent view
// without repeatedly bumping the counter, mirroring the teacher's own
// CowBTree.Snapshot/CowBTreeSnapshot pair.
type Snapshot struct {
	tree *Tree
	seq  uint64
	guard *readerGuard
}

// Snapshot creates a consistent read-only view of the tree. The
// returned Snapshot must be Released once the caller is done with it.
func (t *Tree) Snapshot() *Snapshot {
	seq := t.counter.advance()
	return &Snapshot{
		tree:  t,
		seq:   seq,
		guard: t.reclaimer.enter(seq),
	}
}

// Get looks up key within the snapshot's frozen view.
func (s *Snapshot) Get(key []byte) ([]byte, bool) {
	if key == nil {
		return nil, false
	}
	n := s.tree.root
	for !n.IsLeaf() {
		left := routesLeft(key, n.key)
		child := readChild(n, left, s.seq)
		if child == nil {
			return nil, false
		}
		n = child
	}
	if keysEqual(n.key, key) {
		return copyBytes(n.value), true
	}
	return nil, false
}

// RangeScan returns the values of every key in [a, b] within the
// snapshot's frozen view.
func (s *Snapshot) RangeScan(a, b []byte) ([][]byte, error) {
	if a == nil || b == nil {
		return nil, ErrNilKey
	}
	if compareKeys(a, b) > 0 {
		return nil, ErrInvalidRange
	}

	buf := scanBufferPool.Get().(*valueBuffer)
	buf.reset()
	defer scanBufferPool.Put(buf)

	scanNode(s.tree.root, a, b, s.seq, buf)

	result := make([][]byte, len(buf.vals))
	copy(result, buf.vals)
	return result, nil
}

// Release releases the snapshot, allowing nodes retired after it was
// taken to be reclaimed once no other reader still needs them.
func (s *Snapshot) Release() {
	if s.guard != nil {
		s.guard.leave()
		s.guard = nil
	}
}
