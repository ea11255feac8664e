package idempotency

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
	"strings"
)

// fingerprintLen is the number of hex characters kept from the hash.
const fingerprintLen = 32

// Fingerprint derives a deterministic key for a logical operation instance:
// the operation name namespaces a truncated SHA-256 over the sorted
// parameter pairs. Identical inputs always produce the same key; any
// differing parameter produces a different key. Keys and values are hashed
// as length-prefixed fields so no content can imitate a pair boundary.
func Fingerprint(operation string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	writeField(h, operation)
	for _, k := range keys {
		writeField(h, k)
		writeField(h, params[k])
	}
	sum := hex.EncodeToString(h.Sum(nil))

	var b strings.Builder
	b.WriteString(operation)
	b.WriteString(":")
	b.WriteString(sum[:fingerprintLen])
	return b.String()
}

func writeField(h hash.Hash, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}
