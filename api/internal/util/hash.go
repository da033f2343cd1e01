package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ImageHash is the cache key for an uploaded image.
func ImageHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
