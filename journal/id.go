package journal

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic entropy keeps same-millisecond IDs sortable, which
	// matters for an append-only log keyed by trade ID.
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewTradeID returns a time-sortable ULID string.
func NewTradeID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		// Only possible if time runs backwards past the ULID epoch.
		panic(err)
	}
	return id.String()
}
