package pnbst

import (
	"bytes"
	"testing"
)

func TestRemoveExistingKey(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	if _, _, err := tree.PutIfAbsent([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("PutIfAbsent failed: %v", err)
	}

	prior, existed, err := tree.Remove([]byte("k"))
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !existed {
		t.Fatalf("key should have existed")
	}
	if !bytes.Equal(prior, []byte("v")) {
		t.Errorf("Remove prior value: got %q, want %q", prior, "v")
	}

	ok, err := tree.Contains([]byte("k"))
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Fatalf("key should be absent after Remove")
	}
}

func TestRemoveAbsentKeyIsNoop(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	prior, existed, err := tree.Remove([]byte("nope"))
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if existed {
		t.Fatalf("absent key should not be reported as existing")
	}
	if prior != nil {
		t.Errorf("prior should be nil for an absent key, got %q", prior)
	}
}

func TestRemoveThenReinsert(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	if _, _, err := tree.PutIfAbsent([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("PutIfAbsent failed: %v", err)
	}
	if _, existed, err := tree.Remove([]byte("k")); err != nil || !existed {
		t.Fatalf("Remove failed or reported absent: existed=%v err=%v", existed, err)
	}
	if _, existed, err := tree.PutIfAbsent([]byte("k"), []byte("v2")); err != nil || existed {
		t.Fatalf("reinsert failed or reported existed: existed=%v err=%v", existed, err)
	}

	ok, err := tree.Contains([]byte("k"))
	if err != nil || !ok {
		t.Fatalf("key should be present after reinsert: ok=%v err=%v", ok, err)
	}
}

func TestRemoveManyKeysLeavesOthersIntact(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	keys := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, k := range keys {
		if _, _, err := tree.PutIfAbsent([]byte(k), []byte(k)); err != nil {
			t.Fatalf("PutIfAbsent(%s) failed: %v", k, err)
		}
	}

	toRemove := map[string]bool{"b": true, "d": true, "f": true}
	for k := range toRemove {
		if _, existed, err := tree.Remove([]byte(k)); err != nil || !existed {
			t.Fatalf("Remove(%s) failed or reported absent: existed=%v err=%v", k, existed, err)
		}
	}

	for _, k := range keys {
		ok, err := tree.Contains([]byte(k))
		if err != nil {
			t.Fatalf("Contains(%s) failed: %v", k, err)
		}
		if toRemove[k] && ok {
			t.Errorf("%s should have been removed", k)
		}
		if !toRemove[k] && !ok {
			t.Errorf("%s should still be present", k)
		}
	}
}
