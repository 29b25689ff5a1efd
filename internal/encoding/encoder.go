package encoding

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// TermKeySize is the size of an encoded term key (128-bit hash)
const TermKeySize = 16

// TermEncoder turns terms into fixed-size storage keys.
// Terms are opaque strings; two terms share a key only on a 128-bit hash collision.
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [TermKeySize]byte {
	hash := xxh3.HashString128(s)
	var result [TermKeySize]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// TermKey returns the storage key of a term
func (e *TermEncoder) TermKey(term string) []byte {
	hash := e.Hash128(term)
	return hash[:]
}
