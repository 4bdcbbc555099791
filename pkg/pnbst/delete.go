// pkg/pnbst/delete.go
package pnbst

// Remove deletes key if present, returning its prior value, or reports
// absence. Like PutIfAbsent, all internal retries are invisible to the
// caller (spec section 4.8).
func (t *Tree) Remove(key []byte) (prior []byte, existed bool, err error) {
	if key == nil {
		return nil, false, ErrNilKey
	}
	if t.isClosed() {
		return nil, false, ErrClosed
	}
	key = copyBytes(key)

	var resume *Node
	for {
		seq := t.counter.load()
		path := t.search(key, seq, resume)
		resume = path.ggp

		ok, pinfo, gpinfo := validateLeaf(t.root, path.gp, path.p, path.l, key)
		if !ok {
			t.stats.bumpRetry()
			continue
		}

		if !keysEqual(path.l.key, key) {
			return nil, false, nil // absent, tree unchanged
		}

		leftOfP := routesLeft(key, path.p.key)
		var s *Node
		if leftOfP {
			s = path.p.loadRight()
		} else {
			s = path.p.loadLeft()
		}
		okSib, _ := validateLink(path.p, s, !leftOfP)
		if !okSib {
			t.stats.bumpRetry()
			continue
		}

		if t.counter.load() != seq {
			t.stats.bumpRetry()
			continue
		}

		if !s.IsLeaf() {
			if okL, _ := validateLink(s, s.loadLeft(), true); !okL {
				t.stats.bumpRetry()
				continue
			}
			if okR, _ := validateLink(s, s.loadRight(), false); !okR {
				t.stats.bumpRetry()
				continue
			}
		}

		newSibling := buildSiblingCopy(s, path.p, seq)
		linfo := path.l.loadInfo()
		sinfo := s.loadInfo()

		d := &Descriptor{
			connectorNode:       path.gp,
			firstMarkedNode:     path.p,
			secondMarkedNode:    path.l,
			thirdMarkedNode:     s,
			firstMarkedOldInfo:  pinfo,
			secondMarkedOldInfo: linfo,
			thirdMarkedOldInfo:  sinfo,
			newNode:             newSibling,
			handshakingSeq:      seq,
			counter:             t.counter,
			state:               int32(stateNull),
		}

		priorValue := copyBytes(path.l.value)
		if t.executeDelete(path.gp, path.p, path.l, s, gpinfo, d) {
			t.stats.bumpRemove()
			t.stats.bumpCommitted()
			t.retire(d)
			return priorValue, true, nil
		}
		t.stats.bumpRetry()
	}
}

// buildSiblingCopy builds a structural copy of s -- same key/value if a
// leaf, same children if internal -- to occupy the tree position
// currently held by p (p is what previously occupied that position, so
// prevNode = p, not s).
func buildSiblingCopy(s, p *Node, seq uint64) *Node {
	if s.IsLeaf() {
		n := newLeaf(copyBytes(s.key), copyBytes(s.value), seq)
		n.prevNode = p
		return n
	}
	n := newInternal(copyBytes(s.key), s.loadLeft(), s.loadRight(), p, seq)
	return n
}

// executeDelete re-validates that gp, p, l, and s are not frozen
// (helping any that are), re-checks the handshake sequence, installs d
// onto gp.info, and drives it to completion.
func (t *Tree) executeDelete(gp, p, l, s *Node, gpinfo *Descriptor, d *Descriptor) bool {
	for _, n := range [4]*Node{gp, p, l, s} {
		if helpIfBusy(n) {
			return false
		}
		if n.loadInfo().isFrozen(n) {
			return false
		}
	}
	if t.counter.load() != d.handshakingSeq {
		return false
	}
	if !gp.casInfo(gpinfo, d) {
		return false
	}
	return help(d)
}
