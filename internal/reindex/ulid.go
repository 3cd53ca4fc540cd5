package reindex

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Run ids are ULIDs: 48-bit millisecond timestamp plus 80 bits of
// randomness, Crockford Base32, 26 characters, lexically time-ordered.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	idMu    sync.Mutex
	idLast  uint64
	idSeq   uint16
	idClock = time.Now
)

// NewRunID returns a fresh ULID. Ids minted in the same millisecond differ
// by a sequence embedded at the head of the random part.
func NewRunID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ts := uint64(idClock().UnixMilli())
	if ts == idLast {
		idSeq++
	} else {
		idLast, idSeq = ts, 0
	}

	var b [16]byte
	for i := range 6 {
		b[i] = byte(ts >> (40 - 8*i))
	}
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], idSeq)
	return encodeULID(b)
}

// encodeULID writes 128 bits as 26 base32 digits, most significant first.
// The leading digit carries only the top 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
