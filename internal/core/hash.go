package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash returns the change-detection digest of a record: SHA-256 over
// its deterministic JSON form. encoding/json emits struct fields in
// declaration order, so the digest is stable as long as Record's fields are
// not reordered. The digest detects re-import changes only; it is not a
// security boundary.
func ContentHash(rec *Record) string {
	data, err := json.Marshal(rec)
	if err != nil {
		// Record contains only marshalable types; this cannot happen.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
