// Package scram implements the client side of the Salted Challenge
// Response Authentication Mechanism (SCRAM, RFC 5802) for a MongoDB
// wire-protocol driver, as described by the SCRAM client specification
// this module implements. It covers the cryptographic pipeline, the
// SASL message construction and parsing, and the multi-round-trip
// conversation state machine; the BSON codec, the connection/transport,
// the handshake orchestration, command monitoring, and TLS remain
// external collaborators, represented here only by the port interfaces
// in ports.go.
//
// Each authentication attempt is parameterized by a hash family via one
// of the two shared Mechanism values, SHA1 or SHA256; the caller selects
// which one to use, since mechanism negotiation is out of scope.
package scram

import (
	"crypto/sha1"
	"crypto/sha256"
	"hash"
)

// Mechanism identifies one of the two supported SCRAM hash families
// and carries the parameters derived from it (hash constructor and
// output length).
type Mechanism struct {
	name   string
	hashFn func() hash.Hash
	size   int // hash output length, in bytes
}

// SHA1 is the SCRAM-SHA-1 mechanism.
var SHA1 = &Mechanism{name: "SCRAM-SHA-1", hashFn: sha1.New, size: sha1.Size}

// SHA256 is the SCRAM-SHA-256 mechanism.
var SHA256 = &Mechanism{name: "SCRAM-SHA-256", hashFn: sha256.New, size: sha256.Size}

// Name returns the SASL mechanism name, e.g. "SCRAM-SHA-256", exactly
// as it must appear in the saslStart command's mechanism field.
func (m *Mechanism) Name() string { return m.name }

// Size returns the hash family's digest length in bytes (20 for SHA-1,
// 32 for SHA-256); PBKDF2 derivations and HMACs under this mechanism
// always produce output of this length.
func (m *Mechanism) Size() int { return m.size }
