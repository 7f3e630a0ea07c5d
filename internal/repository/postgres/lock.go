package postgres

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sort"
)

// LockKey derives the advisory lock key for a set of column values in table.
//
// The key is SHA-256 over the table name followed by "key:value" for each
// pair in ascending key order. The first eight bytes of the digest are read
// as a big-endian uint64 and reduced modulo math.MaxInt64, so the result is
// a non-negative int64 accepted by pg_advisory_xact_lock. Any process using
// the same algorithm contends on the same lock.
func LockKey(table string, keys map[string]string) int64 {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(table))
	for _, k := range names {
		h.Write([]byte(k + ":" + keys[k]))
	}
	sum := h.Sum(nil)

	return int64(binary.BigEndian.Uint64(sum[:8]) % math.MaxInt64)
}
