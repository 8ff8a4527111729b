package scram

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/scramauth/mongoscram/pkg/core/scramerr"
	"golang.org/x/crypto/pbkdf2"
)

// H returns the cryptographic hash of data under m's hash family,
// 20 bytes for SHA-1 or 32 bytes for SHA-256.
func (m *Mechanism) H(data []byte) []byte {
	h := m.hashFn()
	h.Write(data)
	return h.Sum(nil)
}

// HMAC returns the standard HMAC of data keyed by key, under m's hash
// family.
func (m *Mechanism) HMAC(key, data []byte) []byte {
	mac := hmac.New(m.hashFn, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// PBKDF2 derives a key of m's hash length from password and salt using
// iters rounds of PBKDF2, per RFC 5802 §3 / RFC 2898.
func (m *Mechanism) PBKDF2(password, salt []byte, iters int) []byte {
	return pbkdf2.Key(password, salt, iters, m.size, m.hashFn)
}

// RandomBytes returns n cryptographically secure random bytes. It
// fails with a RandomnessUnavailable error if the underlying RNG
// cannot satisfy the read.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, scramerr.RandomnessUnavailableErr(
			fmt.Errorf("reading %d random bytes: %w", n, err),
		)
	}
	return buf, nil
}

// XOR returns the byte-wise XOR of a and b. a and b MUST be of equal
// length; a length mismatch is a programmer error and panics, since it
// can only arise from a bug in the caller (e.g. mismatched hash
// families) rather than from untrusted input.
func XOR(a, b []byte) []byte {
	if len(a) != len(b) {
		panic(fmt.Sprintf("scram: XOR operands of unequal length: %d != %d", len(a), len(b)))
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// ConstantTimeEqual reports whether a and b are equal, in time that
// does not depend on their contents (only on their lengths). It
// returns false immediately, without comparing any byte, if the
// lengths differ. This routine is mandatory for the server-signature
// check (spec.md §4.1): a naive comparison is a specification
// violation, since it would leak timing information about how many
// leading bytes of a forged signature matched.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
