// Package mongoconn adapts the core SCRAM engine's Conn port (see
// pkg/core/scram/ports.go) to a transport. FakeServer implements the
// server half of the SASL exchange entirely in memory, so the engine
// can be exercised end to end without a real mongod: it is test/demo
// scaffolding only, not an implementation of server-side SCRAM (which
// spec.md §1 names as a non-goal of this module).
package mongoconn

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	scram "github.com/scramauth/mongoscram/pkg/core/scram"
)

// storedUser mirrors the "credentials" sub-document a real MongoDB
// stores under admin.system.users for one SCRAM mechanism (compare
// other_examples/16ca5203_MangoDB-io-MangoDB__internal-handler-msg_saslstart.go.go):
// iterationCount, salt, storedKey, and serverKey, never the password.
type storedUser struct {
	iterations int
	salt       []byte
	storedKey  []byte
	serverKey  []byte
}

// FakeServer is an in-memory SCRAM server used to exercise the client
// Engine in tests and in the cmd/scramauth demo. It supports exactly
// one conversation per FakeServer.Conn instance at a time, matching
// the engine's sequential, single-connection usage.
type FakeServer struct {
	mechanism *scram.Mechanism
	users     map[string]storedUser

	// RequireEmptyRetry makes every conversation return done: false on
	// the first successful proof exchange, so callers must complete
	// the RetryEmpty transition (spec.md §4.6 transition 4) with one
	// further empty-payload saslContinue before the server reports
	// done: true.
	RequireEmptyRetry bool
}

// NewFakeServer returns a FakeServer for the given mechanism with an
// empty user table.
func NewFakeServer(m *scram.Mechanism) *FakeServer {
	return &FakeServer{mechanism: m, users: make(map[string]storedUser)}
}

// Register stores SCRAM credentials for username/password at the
// given iteration count, generating a random salt. It uses the same
// password preparation and PBKDF2/HMAC pipeline as the client engine
// to derive storedKey/serverKey (mirroring how an administrator sets
// a SCRAM password via `createUser`/`ALTER ROLE`, out of scope here
// but needed to make the fake self-consistent).
func (s *FakeServer) Register(username, password string, iterations int) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	prepped, err := preparePassword(s.mechanism, username, password)
	if err != nil {
		return err
	}
	saltedPassword := s.mechanism.PBKDF2(prepped, salt, iterations)
	clientKey := s.mechanism.HMAC(saltedPassword, []byte("Client Key"))
	storedKey := s.mechanism.H(clientKey)
	serverKey := s.mechanism.HMAC(saltedPassword, []byte("Server Key"))
	s.users[username] = storedUser{
		iterations: iterations,
		salt:       salt,
		storedKey:  storedKey,
		serverKey:  serverKey,
	}
	return nil
}

// Conn returns a new Conn bound to this server, implementing
// scram.Conn. A Conn is stateful across one conversation and must not
// be reused concurrently.
func (s *FakeServer) Conn() *Conn {
	return &Conn{server: s}
}

// Conn implements scram.Conn against an in-memory FakeServer.
type Conn struct {
	server *FakeServer

	username    string
	clientNonce string
	serverNonce string
	authMessage []byte
	user        storedUser
	retried     bool
}

// Handshake simulates a MongoDB server answering an initial handshake
// (isMaster/hello) document that carries a speculativeAuthenticate
// sub-document (spec.md §4.7, §6): it runs the embedded saslStart
// payload through the same path SubmitCommand would and returns a
// handshake reply whose own speculativeAuthenticate sub-document is
// the server-first SCRAM reply, so the caller can feed it to
// AuthContext.SpeculativeAuthenticate without a separate round trip.
func (c *Conn) Handshake(handshake scram.Document) (scram.Document, error) {
	spec, ok := handshake["speculativeAuthenticate"].(scram.Document)
	if !ok {
		return scram.Document{"ok": float64(1)}, nil
	}
	reply, err := c.handleStart(spec)
	if err != nil {
		return nil, err
	}
	return scram.Document{
		"ok":                      float64(1),
		"speculativeAuthenticate": reply.Result,
	}, nil
}

// SubmitCommand implements scram.Conn.
func (c *Conn) SubmitCommand(_ context.Context, namespace string, command scram.Document) (*scram.Reply, error) {
	if namespace == "" {
		return nil, errors.New("mongoconn: empty namespace")
	}
	switch {
	case command["saslStart"] != nil:
		return c.handleStart(command)
	case command["saslContinue"] != nil:
		return c.handleContinue(command)
	default:
		return nil, fmt.Errorf("mongoconn: unsupported command %v", command)
	}
}
