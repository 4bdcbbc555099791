package pnbst

import (
	"bytes"
	"fmt"
	"testing"
)

func TestRangeScanReturnsKeysInOrder(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	inserted := []string{"d", "b", "a", "c", "e"}
	for _, k := range inserted {
		if _, _, err := tree.PutIfAbsent([]byte(k), []byte(k)); err != nil {
			t.Fatalf("PutIfAbsent(%s) failed: %v", k, err)
		}
	}

	values, err := tree.RangeScan([]byte("a"), []byte("e"))
	if err != nil {
		t.Fatalf("RangeScan failed: %v", err)
	}

	want := []string{"a", "b", "c", "d", "e"}
	if len(values) != len(want) {
		t.Fatalf("RangeScan returned %d values, want %d", len(values), len(want))
	}
	for i, v := range values {
		if !bytes.Equal(v, []byte(want[i])) {
			t.Errorf("RangeScan[%d] = %q, want %q", i, v, want[i])
		}
	}
}

func TestRangeScanRespectsBounds(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	for i := 0; i < 20; i++ {
		k := []byte(fmt.Sprintf("%02d", i))
		if _, _, err := tree.PutIfAbsent(k, k); err != nil {
			t.Fatalf("PutIfAbsent failed: %v", err)
		}
	}

	values, err := tree.RangeScan([]byte("05"), []byte("10"))
	if err != nil {
		t.Fatalf("RangeScan failed: %v", err)
	}
	if len(values) != 6 {
		t.Fatalf("RangeScan[05,10] returned %d values, want 6", len(values))
	}
	for i, v := range values {
		want := fmt.Sprintf("%02d", i+5)
		if !bytes.Equal(v, []byte(want)) {
			t.Errorf("RangeScan[%d] = %q, want %q", i, v, want)
		}
	}
}

func TestRangeScanRejectsInvertedRange(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	if _, err := tree.RangeScan([]byte("z"), []byte("a")); err != ErrInvalidRange {
		t.Errorf("want ErrInvalidRange, got %v", err)
	}
}

func TestSnapshotIsolatesFromLaterWrites(t *testing.T) {
	tree := NewTree()
	defer tree.Close()

	if _, _, err := tree.PutIfAbsent([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("PutIfAbsent failed: %v", err)
	}

	snap := tree.Snapshot()
	defer snap.Release()

	if _, _, err := tree.PutIfAbsent([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("PutIfAbsent failed: %v", err)
	}

	if _, ok := snap.Get([]byte("b")); ok {
		t.Errorf("snapshot taken before inserting %q should not observe it", "b")
	}

	values, err := snap.RangeScan([]byte("a"), []byte("z"))
	if err != nil {
		t.Fatalf("Snapshot.RangeScan failed: %v", err)
	}
	if len(values) != 1 || !bytes.Equal(values[0], []byte("1")) {
		t.Errorf("snapshot range scan should only see the pre-snapshot value, got %v", values)
	}

	live, err := tree.RangeScan([]byte("a"), []byte("z"))
	if err != nil {
		t.Fatalf("RangeScan failed: %v", err)
	}
	if len(live) != 2 {
		t.Errorf("a fresh scan against the live tree should see both keys, got %v", live)
	}
}

func TestValueBufferGrowsPastInitialCapacity(t *testing.T) {
	buf := newValueBuffer()
	n := 300
	for i := 0; i < n; i++ {
		buf.push([]byte{byte(i)})
	}
	if len(buf.vals) != n {
		t.Fatalf("valueBuffer should hold %d pushed values, got %d", n, len(buf.vals))
	}
	for i, v := range buf.vals {
		if int(v[0]) != i%256 {
			t.Fatalf("valueBuffer lost or reordered an element at index %d: got %d want %d", i, v[0], i%256)
		}
	}
}
