// pkg/pnbst/help.go
package pnbst

// help drives d through its state machine to a terminal state and
// reports whether it reached COMMIT. Any thread may call help on any
// descriptor it observes; every transition is gated by an
// expected-value CAS, so repeated or concurrent helps are idempotent
// and a thread that stalls mid-help never blocks another thread from
// finishing the same descriptor (spec section 4.6).
func help(d *Descriptor) bool {
	for {
		switch d.loadState() {
		case stateNull:
			helpHandshake(d)
		case stateTry:
			helpAdvanceFromTry(d)
		case stateCommit:
			return true
		case stateAbort:
			return false
		}
	}
}

// helpHandshake reconciles d's sequence with the live counter: either
// the update's new nodes precede the counter (and so are invisible to
// scans already in flight with an earlier view), or the update aborts
// to be retried with a fresh sequence.
func helpHandshake(d *Descriptor) {
	seq := d.counter.load()
	if seq != d.handshakingSeq {
		d.casState(stateNull, stateAbort)
		return
	}
	d.casState(stateNull, stateTry)
}

// helpAdvanceFromTry performs the Marking phase and, if every victim
// was marked, the child swing, then writes the terminal state. Per
// spec section 9's resolved open question, the terminal write is a CAS
// from TRY rather than a plain store, so it can never stomp a state
// some other helper already advanced past TRY.
func helpAdvanceFromTry(d *Descriptor) {
	if markAll(d) {
		swingChild(d)
		d.casState(stateTry, stateCommit)
		return
	}
	d.casState(stateTry, stateAbort)
}

// markAll CASes info from its recorded expected value to d on each of
// the one or three marked nodes, in order. After each CAS it re-reads
// the node's info; if that isn't d, the mark failed (something else
// raced ahead) and the whole operation aborts.
func markAll(d *Descriptor) bool {
	for _, slot := range d.markedSlots() {
		if slot.node == nil {
			continue
		}
		if !markOne(d, slot.node, slot.oldInfo) {
			return false
		}
	}
	return true
}

func markOne(d *Descriptor, node *Node, oldInfo *Descriptor) bool {
	if node.loadInfo() == d {
		return true // already marked by us or a racing helper
	}
	node.casInfo(oldInfo, d) // attempt; outcome decided by the re-read below
	return node.loadInfo() == d
}

// swingChild installs d.newNode as the matching child of
// d.connectorNode once firstMarkedNode is confirmed still a child
// there. The CAS is idempotent, so a racing helper that already swung
// the pointer leaves this as a no-op.
func swingChild(d *Descriptor) {
	conn := d.connectorNode
	victim := d.firstMarkedNode

	if conn.loadLeft() == victim {
		conn.casLeft(victim, d.newNode)
		return
	}
	if conn.loadRight() == victim {
		conn.casRight(victim, d.newNode)
	}
}
