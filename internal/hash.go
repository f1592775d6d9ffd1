package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashURL is the key format shared by every cache entry derived from a URL or query.
func HashURL(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
