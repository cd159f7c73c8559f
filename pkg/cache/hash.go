package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"hash"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashMatrix digests the shape and the IEEE-754 bits of every element of m,
// row by row. A matrix and its transpose hash differently unless square and
// symmetric.
func HashMatrix(m mat.Matrix) string {
	r, c := m.Dims()
	h := sha256.New()
	var word [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(word[:], v)
		h.Write(word[:])
	}
	put(uint64(r))
	put(uint64(c))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			put(math.Float64bits(m.At(i, j)))
		}
	}
	return digest(h)
}

// hashKey joins prefix with the digest of the JSON encoding of parts.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + digest(h)
}

func digest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
