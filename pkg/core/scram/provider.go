package scram

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the public façade for one SCRAM authentication attempt
// (spec.md §4.7), parameterized by the hash family the caller has
// already chosen. It exposes Prepare (build the first client message,
// optionally embedded as a speculative handshake field) and
// Authenticate (drive the remaining conversation, consuming any
// speculative server reply).
type Provider struct {
	mechanism     *Mechanism
	cache         *saltedPasswordCache
	minIterations int
}

// NewProvider returns a Provider for the given mechanism (SHA1 or
// SHA256). The process-wide SaltedPasswordCache is shared across all
// Providers by default; use NewProviderWithCache to isolate cache
// state (e.g. in tests or a multi-tenant host process).
func NewProvider(m *Mechanism) *Provider {
	return &Provider{mechanism: m, cache: defaultCache, minIterations: defaultMinIterations}
}

// NewProviderWithCache returns a Provider for the given mechanism
// backed by a private SaltedPasswordCache bounded at capacity entries.
func NewProviderWithCache(m *Mechanism, capacity int) *Provider {
	return &Provider{
		mechanism:     m,
		cache:         newSaltedPasswordCache(capacity),
		minIterations: defaultMinIterations,
	}
}

// WithMinIterations returns a copy of p that rejects server-proposed
// iteration counts below floor. A floor below the specification's
// minimum (4096) is raised back up to it: an operator may tighten this
// requirement but never loosen it (spec.md §4.6, §8).
func (p *Provider) WithMinIterations(floor int) *Provider {
	cp := *p
	if floor < defaultMinIterations {
		floor = defaultMinIterations
	}
	cp.minIterations = floor
	return &cp
}

// Prepare generates a 24-byte nonce (spec.md §3), stores it on ac, and
// returns handshake augmented with a "speculativeAuthenticate" field
// equal to the client-first-message plus {db: credentials.source}, so
// it can piggy-back on the initial handshake round trip (spec.md
// §4.7). It fails with a RandomnessUnavailable error if nonce
// generation fails.
func (p *Provider) Prepare(ac *AuthContext, handshake Document) (Document, error) {
	nonce, err := RandomBytes(24)
	if err != nil {
		return nil, err
	}
	ac.nonce = nonce
	ac.AttemptID = uuid.New()

	doc, _ := clientFirstMessage(ac.Credentials, p.mechanism, nonce)
	doc["db"] = ac.Credentials.source()

	augmented := make(Document, len(handshake)+1)
	for k, v := range handshake {
		augmented[k] = v
	}
	augmented["speculativeAuthenticate"] = doc
	return augmented, nil
}

// Authenticate drives the remaining SASL conversation to completion
// using ac (spec.md §4.7). If ac carries a speculative server
// response (set via AuthContext.SpeculativeAuthenticate, sourced from
// the handshake response's speculativeAuthenticate sub-document), the
// ConversationEngine is seeded directly in FirstSent with that
// response; otherwise a full saslStart -> saslContinue dance is run
// from Init.
func (p *Provider) Authenticate(ctx context.Context, ac *AuthContext) (Document, error) {
	engine := newEngine(p.mechanism, ac.Credentials, ac.Conn, ac.nonce, p.cache, p.minIterations)

	var speculative Document
	if ac.hasSpeculativeFirstResponse {
		speculative = ac.speculativeFirstResponse
	}
	return engine.Run(ctx, speculative)
}
