package scram_test

import (
	"bytes"
	"testing"

	"github.com/scramauth/mongoscram/pkg/core/scram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXORInvolution(t *testing.T) {
	a := []byte{0x01, 0xff, 0x10, 0x00}
	b := []byte{0xaa, 0x55, 0x0f, 0xf0}
	c := scram.XOR(a, b)
	require.True(t, bytes.Equal(scram.XOR(a, c), b))
}

func TestXORMismatchedLengthsPanic(t *testing.T) {
	assert.Panics(t, func() {
		scram.XOR([]byte{1, 2, 3}, []byte{1, 2})
	})
}

func TestConstantTimeEqual(t *testing.T) {
	cases := []struct {
		name     string
		a, b     []byte
		expected bool
	}{
		{"equal", []byte("hunter2"), []byte("hunter2"), true},
		{"same-length-differ", []byte("hunter2"), []byte("hunter3"), false},
		{"different-length", []byte("short"), []byte("longerstring"), false},
		{"both-empty", nil, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, scram.ConstantTimeEqual(tc.a, tc.b))
		})
	}
}

func TestMechanismSizes(t *testing.T) {
	assert.Equal(t, 20, scram.SHA1.Size())
	assert.Equal(t, 32, scram.SHA256.Size())
	assert.Equal(t, "SCRAM-SHA-1", scram.SHA1.Name())
	assert.Equal(t, "SCRAM-SHA-256", scram.SHA256.Name())
}

func TestPBKDF2DeterministicAndDigestLength(t *testing.T) {
	password := []byte("pencil")
	salt := []byte("QSXCR+Q6sek8bf92")

	a := scram.SHA1.PBKDF2(password, salt, 4096)
	b := scram.SHA1.PBKDF2(password, salt, 4096)
	assert.Equal(t, a, b)
	assert.Len(t, a, scram.SHA1.Size())

	c := scram.SHA256.PBKDF2(password, salt, 4096)
	assert.Len(t, c, scram.SHA256.Size())
	assert.NotEqual(t, a, c[:scram.SHA1.Size()])
}

func TestRandomBytesLength(t *testing.T) {
	b, err := scram.RandomBytes(24)
	require.NoError(t, err)
	assert.Len(t, b, 24)
}
