package pnbst

import (
	"bytes"
	"testing"
)

func TestSearchFindsInsertedKey(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	if _, _, err := tree.PutIfAbsent([]byte("m"), []byte("1")); err != nil {
		t.Fatalf("PutIfAbsent failed: %v", err)
	}

	seq := tree.counter.load()
	path := tree.search([]byte("m"), seq, nil)
	if path.l == nil || !keysEqual(path.l.key, []byte("m")) {
		t.Fatalf("search did not land on the inserted leaf")
	}
	if path.p == nil {
		t.Fatalf("search did not return a parent")
	}
}

func TestSearchResumeFromGreatGrandparent(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e")}
	for _, k := range keys {
		if _, _, err := tree.PutIfAbsent(k, k); err != nil {
			t.Fatalf("PutIfAbsent(%s) failed: %v", k, err)
		}
	}

	seq := tree.counter.load()
	first := tree.search([]byte("e"), seq, nil)
	resumed := tree.search([]byte("e"), seq, first.ggp)

	if !keysEqual(resumed.l.key, []byte("e")) {
		t.Fatalf("resumed search did not land on the same leaf")
	}
}

func TestSearchRestartsFromRootWhenResumeIncoherent(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	if _, _, err := tree.PutIfAbsent([]byte("x"), []byte("1")); err != nil {
		t.Fatalf("PutIfAbsent failed: %v", err)
	}

	detached := newLeaf([]byte("ghost"), []byte("ghost"), 0)
	seq := tree.counter.load()
	path := tree.search([]byte("x"), seq, detached)
	if !bytes.Equal(path.l.key, []byte("x")) {
		t.Fatalf("search with a detached resume node should fall back to root and still find the key")
	}
}
