package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTIDFormat(t *testing.T) {
	tid := NextTID()

	assert.Len(t, tid, 13)
	for _, c := range tid {
		assert.Contains(t, tidAlphabet, string(c))
	}
}

func TestNextTIDMonotonic(t *testing.T) {
	prev := NextTID()
	for range 1000 {
		next := NextTID()
		require.Greater(t, next, prev, "keys must sort in creation order")
		prev = next
	}
}

func TestNextTIDSameMicrosecond(t *testing.T) {
	frozen := time.Now()
	c := &tidClock{clockID: 42, now: func() time.Time { return frozen }}

	first := c.next()
	second := c.next()

	assert.NotEqual(t, first, second)
	assert.Greater(t, second, first)
}

func TestNextTIDConcurrent(t *testing.T) {
	const perWorker = 100
	const workers = 8

	var wg sync.WaitGroup
	results := make(chan string, workers*perWorker)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				results <- NextTID()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, workers*perWorker)
	for tid := range results {
		require.False(t, seen[tid], "duplicate key %s", tid)
		seen[tid] = true
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestEncodeTIDOrdering(t *testing.T) {
	assert.Less(t, encodeTID(1), encodeTID(2))
	assert.Less(t, encodeTID(1<<20), encodeTID(1<<21))
	assert.Equal(t, "2222222222222", encodeTID(0))
}
