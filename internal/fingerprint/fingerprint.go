// Package fingerprint derives content-addressed identifiers. Only the
// digest ever reaches storage; raw content cannot be reconstructed from it.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Text returns the SHA-256 hex digest of the normalized text.
// Normalization is trim + lowercase so that case and surrounding
// whitespace never split the dedup key.
func Text(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Image returns the SHA-256 hex digest of the raw image bytes.
// No normalization: the downloaded buffer is hashed as-is.
func Image(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
