package dedup

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hasher builds a stable 64-bit fingerprint from a sequence of values
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func NewHasher() *Hasher {
	return &Hasher{d: xxhash.New()}
}

func (h *Hasher) String(s string) *Hasher {
	h.Int(int64(len(s)))
	h.d.WriteString(s)
	return h
}

func (h *Hasher) Int(i int64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(i))
	h.d.Write(h.buf[:])
	return h
}

func (h *Hasher) Float(f float64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], math.Float64bits(f))
	h.d.Write(h.buf[:])
	return h
}

func (h *Hasher) Sum() uint64 {
	return h.d.Sum64()
}

// Hex renders the fingerprint as 16 hex digits
func (h *Hasher) Hex() string {
	s := strconv.FormatUint(h.Sum(), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}
