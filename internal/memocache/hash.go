package memocache

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// HashValue computes the canonical content hash of a JSON value as a
// lowercase hex string. The hash is a pure function of the value: stable
// across runs and platforms, and independent of object key order.
//
// Encoding fed to the hash:
//   - strings: their UTF-8 bytes
//   - null: one byte 0x00
//   - booleans: one byte 0x01 or 0x00
//   - numbers: big-endian 8 bytes, preferring the unsigned integer form,
//     then signed integer, then the IEEE-754 double bits
//   - arrays: elements in order
//   - objects: keys sorted lexicographically, each key's UTF-8 bytes
//     followed by its value
func HashValue(value interface{}) string {
	digest := xxhash.New()
	hashStep(digest, value)
	return strconv.FormatUint(digest.Sum64(), 16)
}

func hashStep(digest *xxhash.Digest, value interface{}) {
	switch v := value.(type) {
	case nil:
		digest.Write([]byte{0x00})
	case bool:
		if v {
			digest.Write([]byte{0x01})
		} else {
			digest.Write([]byte{0x00})
		}
	case string:
		digest.WriteString(v)
	case float64:
		hashNumber(digest, v)
	case int:
		hashNumber(digest, float64(v))
	case int64:
		hashNumber(digest, float64(v))
	case []interface{}:
		for _, elem := range v {
			hashStep(digest, elem)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			digest.WriteString(k)
			hashStep(digest, v[k])
		}
	}
}

func hashNumber(digest *xxhash.Digest, n float64) {
	var buf [8]byte
	switch {
	case n == math.Trunc(n) && n >= 0 && n <= math.MaxUint64:
		binary.BigEndian.PutUint64(buf[:], uint64(n))
	case n == math.Trunc(n) && n >= math.MinInt64:
		binary.BigEndian.PutUint64(buf[:], uint64(int64(n)))
	default:
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(n))
	}
	digest.Write(buf[:])
}
