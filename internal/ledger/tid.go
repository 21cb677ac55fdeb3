package ledger

import (
	"math/rand"
	"sync"
	"time"
)

// Record keys are 13-character timestamp identifiers: 64 bits encoded in a
// sortable base32 alphabet, high bits first. The value packs microseconds
// since the Unix epoch with a per-process clock ID in the low 10 bits, so
// keys from one process sort in creation order and keys from different
// processes rarely collide.
const tidAlphabet = "234567abcdefghijklmnopqrstuvwxyz"

type tidClock struct {
	mu      sync.Mutex
	lastUS  int64
	clockID int64
	now     func() time.Time
}

var clock = &tidClock{
	clockID: rand.Int63n(1 << 10),
	now:     time.Now,
}

// NextTID returns a record key strictly greater than any previously returned
// by this process.
func NextTID() string {
	return clock.next()
}

func (c *tidClock) next() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	us := c.now().UnixMicro()
	if us <= c.lastUS {
		us = c.lastUS + 1
	}
	c.lastUS = us

	return encodeTID(us<<10 | c.clockID)
}

func encodeTID(v int64) string {
	var buf [13]byte
	for i := 12; i >= 0; i-- {
		buf[i] = tidAlphabet[v&0x1f]
		v >>= 5
	}
	return string(buf[:])
}
