package core

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Identity derives a stable identifier from an ordered tuple of semantic
// fields. Each field is length-prefixed before hashing so field boundaries
// are unambiguous ("ab","c" and "a","bc" hash differently). The result is
// stable across processes and depends only on the fields passed, in order.
func Identity(fields ...string) string {
	h := blake3.New()
	var n [8]byte
	for _, f := range fields {
		binary.BigEndian.PutUint64(n[:], uint64(len(f)))
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(f))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
