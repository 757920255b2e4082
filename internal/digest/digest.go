// Package digest fingerprints serialized documents.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Algorithm prefixes every digest string.
const Algorithm = "blake2b-256"

var ErrMismatch = errors.New("digest mismatch")

// Sum returns the digest of data as "blake2b-256:<hex>".
func Sum(data []byte) string {
	sum := blake2b.Sum256(data)
	return Algorithm + ":" + hex.EncodeToString(sum[:])
}

// Verify checks data against a digest produced by Sum.
func Verify(data []byte, want string) error {
	if !strings.HasPrefix(want, Algorithm+":") {
		return fmt.Errorf("unsupported digest format %q", want)
	}
	if got := Sum(data); got != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrMismatch, want, got)
	}
	return nil
}
