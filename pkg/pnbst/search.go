// pkg/pnbst/search.go
package pnbst

// searchPath holds the four-node window a search or validation needs:
// great-grandparent, grandparent, parent, and the candidate leaf.
// ggp may be nil if the candidate leaf is within 3 levels of the root.
type searchPath struct {
	ggp, gp, p, l *Node
}

// search locates the leaf a key would occupy, along with its parent,
// grandparent, and great-grandparent, as seen at sequence seq.
//
// If resume is non-nil and not frozen, descent restarts from resume
// instead of the root (spec section 4.1's optimization: resuming from
// the last great-grandparent avoids walking from root on every retry).
// If that resumption produces an incoherent window (gp is nil but p is
// not the root -- resume was detached from the tree since it was last
// seen), the search is redone from the actual root.
func (t *Tree) search(key []byte, seq uint64, resume *Node) searchPath {
	start := t.root
	if resume != nil && !resume.loadInfo().isFrozen(resume) {
		start = resume
	}

	path := t.descendFrom(start, key, seq)
	if path.gp == nil && path.p != t.root {
		return t.descendFrom(t.root, key, seq)
	}
	return path
}

// descendFrom walks from start to a leaf, sliding a 4-node window over
// the path taken so the last four nodes visited (or fewer, near the
// root) are returned as ggp/gp/p/l.
func (t *Tree) descendFrom(start *Node, key []byte, seq uint64) searchPath {
	var w [4]*Node
	w[3] = start
	cur := start

	for !cur.IsLeaf() {
		left := routesLeft(key, cur.key)
		child := readChild(cur, left, seq)
		if child == nil {
			// Tree invariants guarantee every internal node has a live
			// child at or before any valid seq; this should not happen,
			// but if it does, stop here rather than loop forever.
			break
		}
		w[0], w[1], w[2], w[3] = w[1], w[2], w[3], child
		cur = child
	}

	return searchPath{ggp: w[0], gp: w[1], p: w[2], l: w[3]}
}
