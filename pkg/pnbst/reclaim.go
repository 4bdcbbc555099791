// pkg/pnbst/reclaim.go
package pnbst

import (
	"sync"
	"sync/atomic"
)

// Memory reclamation is explicitly out of THE CORE's scope (spec
// section 1's non-goals: "garbage collection of versioned node chains
// ... reclamation itself is unspecified here"), but spec section 9
// names the shape of a safe strategy: "epoch-based reclamation keyed on
// the version counter." reclaimer is exactly that, adapted from the
// teacher's EpochManager/ReaderGuard (pkg/cowbtree/epoch.go), keyed on
// this protocol's own handshaking sequence instead of a separately
// advanced epoch.
//
// Because Go is garbage collected, reclaimer doesn't free anything
// itself -- it only decides when a retired node/descriptor pair can
// have its last strong reference dropped so the collector is free to
// take it, the same accommodation the teacher's own TryReclaim makes.
type reclaimer struct {
	readers sync.Map // id -> *readerState

	retiredMu sync.Mutex
	retired   map[uint64][]*retiredOp

	nextReaderID uint64
}

type readerState struct {
	seq    uint64
	active int32
}

// retiredOp is a completed operation's descriptor, retired at the
// sequence that was live when it committed. Its marked nodes (and the
// descriptor itself) are only dropped once no reader's recorded
// sequence could still need to walk back to them.
type retiredOp struct {
	descriptor *Descriptor
	retireAt   uint64
}

func newReclaimer() *reclaimer {
	return &reclaimer{retired: make(map[uint64][]*retiredOp)}
}

type readerGuard struct {
	r   *reclaimer
	id  uint64
	st  *readerState
}

// enter records a reader (a scan or Snapshot) observing the tree at
// seq, returning a guard that must be released with leave.
func (r *reclaimer) enter(seq uint64) *readerGuard {
	id := atomic.AddUint64(&r.nextReaderID, 1)
	st := &readerState{seq: seq, active: 1}
	r.readers.Store(id, st)
	return &readerGuard{r: r, id: id, st: st}
}

func (g *readerGuard) leave() {
	if g == nil || g.st == nil {
		return
	}
	atomic.StoreInt32(&g.st.active, 0)
	g.r.readers.Delete(g.id)
}

// retire marks d (and, transitively, the subtree it replaced) as
// eligible for reclamation once no active reader's sequence could
// still observe it.
func (r *reclaimer) retire(d *Descriptor, retireAt uint64) {
	if d == nil {
		return
	}
	r.retiredMu.Lock()
	r.retired[retireAt] = append(r.retired[retireAt], &retiredOp{descriptor: d, retireAt: retireAt})
	r.retiredMu.Unlock()
}

// tryReclaim drops references to everything retired before the oldest
// sequence any active reader still depends on, returning how many
// operations were reclaimed.
func (r *reclaimer) tryReclaim() int {
	minSeq := r.minActiveSeq()

	r.retiredMu.Lock()
	defer r.retiredMu.Unlock()

	n := 0
	for seq, ops := range r.retired {
		if seq < minSeq {
			n += len(ops)
			delete(r.retired, seq)
		}
	}
	return n
}

func (r *reclaimer) minActiveSeq() uint64 {
	min := ^uint64(0)
	any := false
	r.readers.Range(func(_, v interface{}) bool {
		st := v.(*readerState)
		if atomic.LoadInt32(&st.active) == 1 {
			any = true
			if st.seq < min {
				min = st.seq
			}
		}
		return true
	})
	if !any {
		return ^uint64(0) // no active readers: everything retired so far is safe
	}
	return min
}

func (r *reclaimer) activeReaderCount() int {
	count := 0
	r.readers.Range(func(_, v interface{}) bool {
		if st := v.(*readerState); atomic.LoadInt32(&st.active) == 1 {
			count++
		}
		return true
	})
	return count
}

func (r *reclaimer) pendingCount() int {
	r.retiredMu.Lock()
	defer r.retiredMu.Unlock()
	n := 0
	for _, ops := range r.retired {
		n += len(ops)
	}
	return n
}
