package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/vidtree/pkg/treemap"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ItemsHash fingerprints an item list with xxhash64. IDs, exact weight bits
// and metadata all contribute, in input order (layout ties depend on it).
// Returns a 16-character hex string.
func ItemsHash(items []treemap.Item) string {
	d := xxhash.New()
	var buf [8]byte
	for _, it := range items {
		_, _ = d.WriteString(it.ID)
		_, _ = d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(it.Weight))
		_, _ = d.Write(buf[:])
		if len(it.Meta) > 0 {
			meta, _ := json.Marshal(it.Meta)
			_, _ = d.Write(meta)
		}
		_, _ = d.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
