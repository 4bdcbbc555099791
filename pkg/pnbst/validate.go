// pkg/pnbst/validate.go
package pnbst

// validateLink certifies that, at some instant during its execution,
// p was not busy, p was not logically removed, and p's indicated child
// (left if left, else right) equalled c. On success it returns the
// Descriptor instance observed on p, to be reused later as a CAS
// witness. If p's descriptor is in {NULL, TRY}, validateLink helps it
// first, then reports failure for this attempt (spec section 4.3).
func validateLink(p, c *Node, left bool) (ok bool, pinfo *Descriptor) {
	d := p.loadInfo()
	switch d.loadState() {
	case stateNull, stateTry:
		help(d)
		return false, nil
	case stateCommit:
		if d.marks(p) {
			return false, nil // p logically removed
		}
	}

	var child *Node
	if left {
		child = p.loadLeft()
	} else {
		child = p.loadRight()
	}
	if child != c {
		return false, nil
	}
	return true, d
}

// validateLeaf composes validateLink(p -> l) with validateLink(gp -> p)
// (when p is not the root), and additionally requires that p's (and
// gp's) info still equals the descriptor observed by the first check --
// the second read that catches p having briefly become busy between
// its own validation and the next step (spec section 4.3).
func validateLeaf(root, gp, p, l *Node, key []byte) (ok bool, pinfo, gpinfo *Descriptor) {
	leftOfP := routesLeft(key, p.key)
	okP, pWitness := validateLink(p, l, leftOfP)
	if !okP {
		return false, nil, nil
	}

	if p == root {
		if p.loadInfo() != pWitness {
			return false, nil, nil
		}
		return true, pWitness, nil
	}

	leftOfGp := routesLeft(key, gp.key)
	okGp, gpWitness := validateLink(gp, p, leftOfGp)
	if !okGp {
		return false, nil, nil
	}

	if p.loadInfo() != pWitness || gp.loadInfo() != gpWitness {
		return false, nil, nil
	}
	return true, pWitness, gpWitness
}
