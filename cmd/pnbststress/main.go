// cmd/pnbststress/main.go
//
// pnbststress - concurrent stress harness for pkg/pnbst.
//
// Usage:
//
//	pnbststress [-workers=N] [-duration=10s] [-keyspace=10000] [-scanners=2]
//
// Spins up a mix of Put/Remove/Contains workers and background range
// scanners against a single pnbst.Tree for the given duration, then
// prints the tree's final Stats. Grounded on cmd/turdb/main.go's shape:
// a minimal stdlib-flag CLI wrapping the package under cmd/.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"pnbst/pkg/pnbst"
)

func main() {
	workers := flag.Int("workers", 8, "number of concurrent put/remove/contains workers")
	scanners := flag.Int("scanners", 2, "number of concurrent range-scan workers")
	duration := flag.Duration("duration", 10*time.Second, "how long to run")
	keyspace := flag.Int("keyspace", 10_000, "number of distinct integer keys to operate over")
	flag.Parse()

	tree := pnbst.NewTree()
	defer tree.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			runWorker(tree, seed, *keyspace, stop)
		}(int64(i + 1))
	}
	for i := 0; i < *scanners; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			runScanner(tree, seed, *keyspace, stop)
		}(int64(1000 + i))
	}

	time.Sleep(*duration)
	close(stop)
	wg.Wait()

	s := tree.Stats()
	fmt.Fprintf(os.Stdout, "contains=%d inserts=%d removes=%d rangeScans=%d retries=%d helped=%d aborted=%d committed=%d\n",
		s.Contains, s.Inserts, s.Removes, s.RangeScans, s.Retries, s.Helped, s.Aborted, s.Committed)
}

func runWorker(tree *pnbst.Tree, seed int64, keyspace int, stop <-chan struct{}) {
	r := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-stop:
			return
		default:
		}
		key := []byte(strconv.Itoa(r.Intn(keyspace)))
		switch r.Intn(3) {
		case 0:
			value := make([]byte, 8)
			r.Read(value)
			if _, _, err := tree.PutIfAbsent(key, value); err != nil {
				return
			}
		case 1:
			if _, _, err := tree.Remove(key); err != nil {
				return
			}
		default:
			if _, err := tree.Contains(key); err != nil {
				return
			}
		}
	}
}

func runScanner(tree *pnbst.Tree, seed int64, keyspace int, stop <-chan struct{}) {
	r := rand.New(rand.NewSource(seed))
	for {
		select {
		case <-stop:
			return
		default:
		}
		lo := r.Intn(keyspace)
		hi := lo + r.Intn(keyspace/10+1)
		a := []byte(strconv.Itoa(lo))
		b := []byte(strconv.Itoa(hi))
		if _, err := tree.RangeScan(a, b); err != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
