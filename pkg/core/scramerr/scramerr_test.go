package scramerr_test

import (
	"errors"
	"testing"

	"github.com/scramauth/mongoscram/pkg/core/scramerr"
	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := scramerr.AuthTransportErr(inner)
	assert.ErrorIs(t, err, inner)
}

func TestErrorMessageCarriesKind(t *testing.T) {
	err := scramerr.WeakIterationsErr(errors.New("iterations too low"))
	assert.Contains(t, err.Error(), "WeakIterations")
	assert.Contains(t, err.Error(), "iterations too low")
}

func TestRetryableExceptServerSignatureInvalid(t *testing.T) {
	cases := []struct {
		name      string
		err       *scramerr.Error
		retryable bool
	}{
		{"invalid input", scramerr.InvalidInputErr(errors.New("x")), true},
		{"randomness unavailable", scramerr.RandomnessUnavailableErr(errors.New("x")), true},
		{"transport", scramerr.AuthTransportErr(errors.New("x")), true},
		{"server", scramerr.AuthServerErr(errors.New("x")), true},
		{"weak iterations", scramerr.WeakIterationsErr(errors.New("x")), true},
		{"invalid nonce", scramerr.InvalidNonceErr(errors.New("x")), true},
		{"cancelled", scramerr.AuthCancelledErr(errors.New("x")), true},
		{"server signature invalid", scramerr.ServerSignatureInvalidErr(errors.New("x")), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.retryable, tc.err.Retryable())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ServerSignatureInvalid", scramerr.ServerSignatureInvalid.String())
	assert.Equal(t, "Unknown", scramerr.Kind(99).String())
}
