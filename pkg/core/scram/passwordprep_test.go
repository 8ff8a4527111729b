package scram

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5PasswordDigestKnownVector(t *testing.T) {
	// MongoDB's legacy digest: lowercase_hex(MD5("user" + ":mongo:" + "pencil")).
	got := md5PasswordDigest("user", "pencil")
	assert.Equal(t, "1c33006ec1ffd90f9cadcbcc0e118200", string(got))
	assert.Len(t, got, 32)
	// the digest is deterministic and stable across calls
	assert.Equal(t, got, md5PasswordDigest("user", "pencil"))
	assert.NotEqual(t, got, md5PasswordDigest("user", "different"))
	_, err := hex.DecodeString(string(got))
	require.NoError(t, err, "digest must be valid lowercase hex")
}

func TestPrepSHA1UsesMD5Digest(t *testing.T) {
	got, err := SHA1.prep(context.Background(), "user", "pencil")
	require.NoError(t, err)
	assert.Equal(t, md5PasswordDigest("user", "pencil"), got)
}

func TestPrepSHA256Idempotent(t *testing.T) {
	a, err := SHA256.prep(context.Background(), "user", "pencil")
	require.NoError(t, err)
	b, err := SHA256.prep(context.Background(), "user", string(a))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPrepEmptyPasswordIsInvalidInput(t *testing.T) {
	_, err := SHA256.prep(context.Background(), "user", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "InvalidInput")
}

func TestPreparePasswordExportedWrapperMatchesPrep(t *testing.T) {
	direct, err := SHA256.prep(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	wrapped, err := SHA256.PreparePassword(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, direct, wrapped)
}

func TestSaslPrepOrFallbackNormalizesPlainASCII(t *testing.T) {
	got := saslPrepOrFallback(context.Background(), "hunter2")
	assert.Equal(t, []byte("hunter2"), got)
}
