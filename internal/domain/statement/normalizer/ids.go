package normalizer

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync/atomic"
)

// IDLength is the length of every generated transaction ID.
const IDLength = 8

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IDGenerator hands out human-scannable transaction labels.
type IDGenerator interface {
	NextID() string
}

// RandomIDs draws 8 base-36 characters per ID. IDs are not checked for
// uniqueness; treat them as labels, not keys.
type RandomIDs struct{}

// NextID implements IDGenerator.
func (RandomIDs) NextID() string {
	var b [IDLength]byte
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(b[:])
}

// SequentialIDs numbers transactions from a monotonic counter, so IDs from one
// generator never collide (until 36^8 is exhausted).
type SequentialIDs struct {
	next atomic.Uint64
}

// NewSequentialIDs creates a counter-backed generator starting at 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NextID implements IDGenerator.
func (s *SequentialIDs) NextID() string {
	n := s.next.Add(1)
	id := strings.ToUpper(strconv.FormatUint(n, 36))
	if len(id) >= IDLength {
		return id[len(id)-IDLength:]
	}
	return strings.Repeat("0", IDLength-len(id)) + id
}
