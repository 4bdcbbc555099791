// pkg/pnbst/insert.go
package pnbst

// PutIfAbsent inserts key/value if key is absent, or returns the value
// already stored for key. Retries internally on validation failure,
// a frozen node, a handshake mismatch, or a lost CAS -- none of those
// are visible to the caller (spec section 4.8).
func (t *Tree) PutIfAbsent(key, value []byte) (prior []byte, existed bool, err error) {
	if key == nil {
		return nil, false, ErrNilKey
	}
	if t.isClosed() {
		return nil, false, ErrClosed
	}
	key = copyBytes(key)
	value = copyBytes(value)

	var resume *Node
	for {
		seq := t.counter.load()
		path := t.search(key, seq, resume)
		resume = path.ggp

		ok, pinfo, _ := validateLeaf(t.root, path.gp, path.p, path.l, key)
		if !ok {
			t.stats.bumpRetry()
			continue
		}

		if keysEqual(path.l.key, key) {
			t.stats.bumpContains()
			return copyBytes(path.l.value), true, nil
		}

		if t.counter.load() != seq {
			t.stats.bumpRetry()
			continue
		}

		newTriad := buildInsertTriad(key, value, path.l, seq)
		linfo := path.l.loadInfo()
		d := &Descriptor{
			connectorNode:      path.p,
			firstMarkedNode:    path.l,
			firstMarkedOldInfo: linfo,
			newNode:            newTriad,
			handshakingSeq:     seq,
			counter:            t.counter,
			state:              int32(stateNull),
		}

		if t.executeInsert(path.p, path.l, pinfo, d) {
			t.stats.bumpInsert()
			t.stats.bumpCommitted()
			t.retire(d)
			return nil, false, nil
		}
		t.stats.bumpRetry()
	}
}

// buildInsertTriad builds the replacement subtree for inserting key at
// the position currently held by leaf l: a fresh leaf for key, a copy
// of l as its sibling, and an internal node routing between them whose
// prevNode is l (l is what previously occupied this tree position).
func buildInsertTriad(key, value []byte, l *Node, seq uint64) *Node {
	fresh := newLeaf(key, value, seq)
	sibling := newLeaf(copyBytes(l.key), copyBytes(l.value), seq)

	if routesLeft(key, l.key) {
		return newInternal(l.key, fresh, sibling, l, seq)
	}
	return newInternal(key, sibling, fresh, l, seq)
}

// executeInsert re-validates that p and l are not frozen (helping
// either if they're mid-operation), re-checks the handshake sequence,
// then installs d onto p.info with a single CAS and drives it to
// completion. Any failure here means the caller must retry from search.
func (t *Tree) executeInsert(p, l *Node, pinfo *Descriptor, d *Descriptor) bool {
	if helpIfBusy(p) {
		return false
	}
	if helpIfBusy(l) {
		return false
	}
	if p.loadInfo().isFrozen(p) || l.loadInfo().isFrozen(l) {
		return false
	}
	if t.counter.load() != d.handshakingSeq {
		return false
	}
	if !p.casInfo(pinfo, d) {
		return false
	}
	return help(d)
}

// helpIfBusy reports whether n is frozen by an in-progress descriptor,
// helping that descriptor along the way. A committed descriptor that
// marks n is not reported as busy here; executeInsert and executeDelete
// check for that case separately with isFrozen.
func helpIfBusy(n *Node) bool {
	d := n.loadInfo()
	switch d.loadState() {
	case stateNull, stateTry:
		help(d)
		return true
	}
	return false
}
