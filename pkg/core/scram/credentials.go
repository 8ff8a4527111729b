package scram

import "github.com/google/uuid"

// Credentials holds the immutable input to one authentication attempt
// (spec.md §3).
type Credentials struct {
	Username string
	Password string
	// Source is the authentication database, defaulting to "admin"
	// when empty.
	Source string
}

func (c Credentials) source() string {
	if c.Source == "" {
		return "admin"
	}
	return c.Source
}

// ConversationState enumerates the lifecycle of one authentication
// attempt (spec.md §3):
//
//	Init -> FirstSent -> FinalSent -> (Done | RetryEmpty -> Done) | Failed
type ConversationState int

const (
	// Init is the state before any message has been sent.
	Init ConversationState = iota
	// FirstSent follows submission of saslStart (or adoption of a
	// speculative response in its place).
	FirstSent
	// FinalSent follows submission of the first saslContinue carrying
	// the client proof.
	FinalSent
	// RetryEmpty indicates the server returned done: false after a
	// valid proof exchange, requiring one further empty-payload
	// saslContinue.
	RetryEmpty
	// Done is the terminal success state.
	Done
	// Failed is the terminal failure state; see the error returned
	// alongside it for the reason.
	Failed
)

// String returns a short name for s, for logging.
func (s ConversationState) String() string {
	switch s {
	case Init:
		return "Init"
	case FirstSent:
		return "FirstSent"
	case FinalSent:
		return "FinalSent"
	case RetryEmpty:
		return "RetryEmpty"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// AuthContext is the per-attempt mutable state owned by the caller but
// mutated by this package (spec.md §3): the credentials, the nonce
// once generated, the server's speculative response if any, and the
// connection handle used to drive the conversation.
//
// AttemptID identifies one attempt, for callers that correlate log lines
// across its up-to-3 suspension points (spec.md §5); it is generated
// once by Prepare. The package itself does not attach it to any log
// line.
type AuthContext struct {
	Credentials Credentials
	Conn        Conn

	AttemptID uuid.UUID

	nonce                       []byte
	speculativeFirstResponse    Document
	hasSpeculativeFirstResponse bool
}

// SpeculativeAuthenticate records the server's speculativeAuthenticate
// sub-document from the handshake response, if present, so
// Authenticate can seed the ConversationEngine directly in FirstSent
// (spec.md §4.7).
func (ac *AuthContext) SpeculativeAuthenticate(doc Document) {
	ac.speculativeFirstResponse = doc
	ac.hasSpeculativeFirstResponse = true
}
