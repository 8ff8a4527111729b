package scram

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	scramlog "github.com/scramauth/mongoscram/pkg/core/log"
	"github.com/scramauth/mongoscram/pkg/core/scramerr"
	"golang.org/x/text/secure/precis"
)

// saslprepWarnOnce ensures the "no SASLprep available" warning (§4.2,
// §6) is emitted at most once per process, regardless of how many
// SCRAM-SHA-256 attempts fall back to raw UTF-8.
var saslprepWarnOnce sync.Once

// PreparePassword runs the spec.md §4.2 password preparation for
// mechanism m and returns the bytes that would feed PBKDF2. It is
// exported so adapters (e.g. the CLI's `hash` sub-command, or a
// fake/test server that must derive the same saltedPassword a real
// client would) can reproduce this step without duplicating it.
func (m *Mechanism) PreparePassword(ctx context.Context, username, password string) ([]byte, error) {
	return m.prep(ctx, username, password)
}

// prep prepares password for mechanism m, returning the bytes that
// feed PBKDF2 (spec.md §4.2).
//
// For SCRAM-SHA-1 it returns the lowercase hex digest of
// MD5(username + ":mongo:" + password): MongoDB's legacy password
// digest, not SASLprep. For SCRAM-SHA-256 it returns the SASLprep
// (RFC 4013) normalization of password as UTF-8 bytes; if
// normalization fails for any reason (including input the profile
// rejects, such as prohibited characters), the raw UTF-8 bytes of
// password are returned instead and a warning is logged once per
// process (see saslPrepOrFallback). The only InvalidInput errors are an
// empty password and an unsupported mechanism.
func (m *Mechanism) prep(ctx context.Context, username, password string) ([]byte, error) {
	if password == "" {
		return nil, scramerr.InvalidInputErr(errors.New("password must not be empty"))
	}
	switch m {
	case SHA1:
		return md5PasswordDigest(username, password), nil
	case SHA256:
		return saslPrepOrFallback(ctx, password), nil
	default:
		return nil, scramerr.InvalidInputErr(fmt.Errorf("unsupported mechanism %q", m.name))
	}
}

// md5PasswordDigest computes MongoDB's SCRAM-SHA-1 password
// representation: lowercase_hex(MD5(username || ":mongo:" || password)).
func md5PasswordDigest(username, password string) []byte {
	sum := md5.Sum([]byte(username + ":mongo:" + password))
	dst := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(dst, sum[:])
	return dst
}

// saslPrepOrFallback returns the SASLprep normalization of password as
// UTF-8 bytes, via precis.OpaqueString (RFC 8265's profile, equivalent
// to SASLprep for passwords). If normalization is unavailable for this
// input, it falls back to the raw UTF-8 bytes of password and warns
// once per process: the implementation SHOULD ship SASLprep, and the
// fallback exists only to avoid a hard failure when normalization
// cannot be applied (spec.md §4.2).
func saslPrepOrFallback(ctx context.Context, password string) []byte {
	prepped, err := precis.OpaqueString.String(password)
	if err != nil {
		saslprepWarnOnce.Do(func() {
			scramlog.Warn(ctx, "SASLprep normalization unavailable, falling back to raw UTF-8 password bytes",
				slog.String("mechanism", SHA256.name),
				scramlog.Err("reason", err),
			)
		})
		return []byte(password)
	}
	return []byte(prepped)
}
