// Package scramerr represents the SCRAM engine's error taxonomy.
// Rather than classifying errors by HTTP status (as an outward-facing
// service might), a SCRAM client classifies them by what part of the
// authentication attempt failed, so a caller (the connection or
// topology layer, per spec.md §7) can decide whether a retry is
// sensible without string-matching an error message.
package scramerr

import "fmt"

// Kind enumerates the SCRAM error taxonomy of spec.md §7.
type Kind int

const (
	// InvalidInput marks non-text credentials or an empty password,
	// raised before any I/O takes place.
	InvalidInput Kind = iota
	// RandomnessUnavailable marks a failed nonce generation.
	RandomnessUnavailable
	// AuthTransportError marks a transport-level failure reported by
	// the connection.
	AuthTransportError
	// AuthServerError marks a structured error returned by the server
	// ($err, errmsg, or SASL e=...).
	AuthServerError
	// WeakIterations marks a server-proposed iteration count below
	// the accepted floor (4096 by default).
	WeakIterations
	// InvalidNonce marks a malformed or non-extending combined nonce.
	InvalidNonce
	// ServerSignatureInvalid marks a server proof that does not match
	// the client's expected HMAC. Always fatal, never retried.
	ServerSignatureInvalid
	// AuthCancelled marks a cancellation observed at a suspension
	// point.
	AuthCancelled
)

// String returns a short, stable name for k, suitable for logging.
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case RandomnessUnavailable:
		return "RandomnessUnavailable"
	case AuthTransportError:
		return "AuthTransportError"
	case AuthServerError:
		return "AuthServerError"
	case WeakIterations:
		return "WeakIterations"
	case InvalidNonce:
		return "InvalidNonce"
	case ServerSignatureInvalid:
		return "ServerSignatureInvalid"
	case AuthCancelled:
		return "AuthCancelled"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying error, aka Err, and classifies it with a
// Kind from the SCRAM taxonomy above.
//
// Error reports built from this type MUST NOT carry the password, the
// salted password, any derived key, or the client proof (spec.md §7);
// callers constructing an *Error are responsible for never passing
// such values in Err's message.
type Error struct {
	Err  error
	kind Kind
}

// Unwrap returns the wrapped inner error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.kind, e.Err.Error())
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Retryable reports whether a caller is permitted to retry the
// authentication attempt after this error. ServerSignatureInvalid is
// the one kind that must never be retried by any layer (spec.md §7);
// every other kind leaves the retry decision to the caller, so it
// reports true here and the topology layer may still choose not to.
func (e *Error) Retryable() bool {
	return e.kind != ServerSignatureInvalid
}

func newError(kind Kind, err error) *Error {
	return &Error{Err: err, kind: kind}
}

// InvalidInputErr wraps err and marks it as an InvalidInput error.
func InvalidInputErr(err error) *Error { return newError(InvalidInput, err) }

// RandomnessUnavailableErr wraps err and marks it as a
// RandomnessUnavailable error.
func RandomnessUnavailableErr(err error) *Error {
	return newError(RandomnessUnavailable, err)
}

// AuthTransportErr wraps err and marks it as an AuthTransportError.
func AuthTransportErr(err error) *Error {
	return newError(AuthTransportError, err)
}

// AuthServerErr wraps err and marks it as an AuthServerError.
func AuthServerErr(err error) *Error {
	return newError(AuthServerError, err)
}

// WeakIterationsErr wraps err and marks it as a WeakIterations error.
func WeakIterationsErr(err error) *Error {
	return newError(WeakIterations, err)
}

// InvalidNonceErr wraps err and marks it as an InvalidNonce error.
func InvalidNonceErr(err error) *Error { return newError(InvalidNonce, err) }

// ServerSignatureInvalidErr wraps err and marks it as a
// ServerSignatureInvalid error.
func ServerSignatureInvalidErr(err error) *Error {
	return newError(ServerSignatureInvalid, err)
}

// AuthCancelledErr wraps err and marks it as an AuthCancelled error.
func AuthCancelledErr(err error) *Error {
	return newError(AuthCancelled, err)
}
