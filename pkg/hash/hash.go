// Package hash computes the content digests the backup engine uses for
// deduplication and integrity verification.
package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

// EmptyDigest is the canonical SHA-256 digest of the empty byte sequence.
const EmptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Compute returns the lowercase-hex SHA-256 digest of buf. It fails with
// vkerrors.KindInvalidInput if buf is nil; the empty (non-nil) slice
// hashes to EmptyDigest.
func Compute(buf []byte) (string, error) {
	if buf == nil {
		return "", vkerrors.New(vkerrors.KindInvalidInput, "hash: buffer is nil")
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// Equal compares two digests case-insensitively, as required when
// verifying a ContentBlob against its stored digest (spec §4.4.4).
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
