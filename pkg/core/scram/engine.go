package scram

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/scramauth/mongoscram/pkg/core/scramerr"
)

// defaultMinIterations is the floor below which a server-proposed
// iteration count is rejected as weak (spec.md §4.6, §8), used when a
// Provider does not specify one explicitly.
const defaultMinIterations = 4096

// Engine drives one SCRAM authentication attempt's state machine
// (spec.md §4.6): Init -> FirstSent -> FinalSent -> (Done | RetryEmpty
// -> Done) | Failed. It is constructed once per attempt by
// ScramAuthProvider and is not safe for concurrent use, matching the
// sequential, single-connection nature of one authentication attempt
// (spec.md §5).
type Engine struct {
	mechanism     *Mechanism
	creds         Credentials
	conn          Conn
	cache         *saltedPasswordCache
	nonce         []byte
	minIterations int

	state ConversationState
	err   error

	conversationID int32

	clientFirstBareBytes []byte
	expectedServerSig    []byte
}

// newEngine constructs an Engine for one attempt, in state Init. A
// speculative server-first reply, if any, is passed to Run rather than
// to newEngine (spec.md §4.6, transition 1; §4.7). A minIters of zero (or below the
// RFC floor) falls back to defaultMinIterations; an operator may raise
// the floor (scramcfg.Config.MinIterations) but never lower it below
// the specification's minimum.
func newEngine(m *Mechanism, creds Credentials, conn Conn, nonce []byte, cache *saltedPasswordCache, minIters int) *Engine {
	if cache == nil {
		cache = defaultCache
	}
	if minIters < defaultMinIterations {
		minIters = defaultMinIterations
	}
	bare := clientFirstBare(EscapeUsername(creds.Username), nonce)
	return &Engine{
		mechanism:            m,
		creds:                creds,
		conn:                 conn,
		cache:                cache,
		nonce:                nonce,
		minIterations:        minIters,
		state:                Init,
		clientFirstBareBytes: bare,
	}
}

// State returns the engine's current ConversationState.
func (e *Engine) State() ConversationState { return e.state }

// Run drives the conversation to completion, returning the final
// server reply on success or a *scramerr.Error classified per spec.md
// §7 on failure. If speculativeFirstResponse is non-nil, saslStart is
// skipped and the engine starts directly in FinalSent-bound processing
// of that response (spec.md §4.6 transition 1).
func (e *Engine) Run(ctx context.Context, speculativeFirstResponse Document) (Document, error) {
	serverFirst, err := e.firstSent(ctx, speculativeFirstResponse)
	if err != nil {
		e.fail(err)
		return nil, err
	}

	reply, done, err := e.finalSent(ctx, serverFirst)
	if err != nil {
		e.fail(err)
		return nil, err
	}
	if done {
		e.state = Done
		return reply, nil
	}

	e.state = RetryEmpty
	reply, err = e.retryEmpty(ctx)
	if err != nil {
		e.fail(err)
		return nil, err
	}
	e.state = Done
	return reply, nil
}

func (e *Engine) fail(err error) {
	e.state = Failed
	e.err = err
}

// firstSent implements transition 1 (Init -> FirstSent): adopt a
// speculative response if present, otherwise submit saslStart and
// await the server-first reply.
func (e *Engine) firstSent(ctx context.Context, speculative Document) (Document, error) {
	if speculative != nil {
		e.state = FirstSent
		return speculative, nil
	}

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	doc, bare := clientFirstMessage(e.creds, e.mechanism, e.nonce)
	e.clientFirstBareBytes = bare

	namespace := e.creds.source() + ".$cmd"
	reply, err := e.conn.SubmitCommand(ctx, namespace, doc)
	if err != nil {
		return nil, scramerr.AuthTransportErr(fmt.Errorf("submitting saslStart: %w", err))
	}
	if serverErr := checkServerError(reply.Result); serverErr != nil {
		return nil, serverErr
	}

	e.state = FirstSent
	return reply.Result, nil
}

// finalSent implements transition 2 (FirstSent -> FinalSent) and the
// server-signature check of transition 3. It returns the final reply
// and whether the server signaled completion (done == true, or done
// absent with ok == 1). A SASL "e=" attribute in the server-final
// payload is a structured server-side failure (spec.md §6, §7) and is
// reported as AuthServerError, not ServerSignatureInvalid: the proof
// was never actually checked, so there is nothing to blame on a
// mismatched signature, and unlike ServerSignatureInvalid this kind
// remains retryable.
func (e *Engine) finalSent(ctx context.Context, serverFirst Document) (Document, bool, error) {
	payloadBytes, conversationID, err := decodeConversationPayload(serverFirst)
	if err != nil {
		return nil, false, err
	}
	e.conversationID = conversationID

	attrs := parseAttributes(string(payloadBytes))
	rnonce, ok := attrs["r"]
	if !ok {
		return nil, false, scramerr.InvalidNonceErr(fmt.Errorf("server-first payload missing r="))
	}
	saltB64, ok := attrs["s"]
	if !ok {
		return nil, false, scramerr.InvalidNonceErr(fmt.Errorf("server-first payload missing s="))
	}
	itersStr, ok := attrs["i"]
	if !ok {
		return nil, false, scramerr.InvalidNonceErr(fmt.Errorf("server-first payload missing i="))
	}

	iters, err := strconv.Atoi(itersStr)
	if err != nil || iters < e.minIterations {
		return nil, false, scramerr.WeakIterationsErr(
			fmt.Errorf("server proposed iteration count %q, want >= %d", itersStr, e.minIterations),
		)
	}

	clientNonceB64 := base64.StdEncoding.EncodeToString(e.nonce)
	if strings.HasPrefix(rnonce, "nonce") || !strings.HasPrefix(rnonce, clientNonceB64) {
		return nil, false, scramerr.InvalidNonceErr(
			fmt.Errorf("server combined nonce does not extend the client nonce"),
		)
	}

	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, false, scramerr.InvalidNonceErr(fmt.Errorf("decoding server salt: %w", err))
	}

	prepped, err := e.mechanism.prep(ctx, e.creds.Username, e.creds.Password)
	if err != nil {
		return nil, false, err
	}

	saltedPassword := e.cache.getOrCompute(e.mechanism, prepped, salt, iters)
	clientKey := e.mechanism.HMAC(saltedPassword, []byte("Client Key"))
	serverKey := e.mechanism.HMAC(saltedPassword, []byte("Server Key"))
	storedKey := e.mechanism.H(clientKey)

	withoutProof := clientFinalWithoutProof(rnonce)
	authMessage := joinAuthMessage(e.clientFirstBareBytes, payloadBytes, withoutProof)

	clientSignature := e.mechanism.HMAC(storedKey, authMessage)
	clientProof := XOR(clientKey, clientSignature)
	e.expectedServerSig = e.mechanism.HMAC(serverKey, authMessage)

	if err := checkCancel(ctx); err != nil {
		return nil, false, err
	}

	finalPayload := clientFinal(rnonce, clientProof)
	doc := saslContinue(e.conversationID, finalPayload)

	namespace := e.creds.source() + ".$cmd"
	reply, err := e.conn.SubmitCommand(ctx, namespace, doc)
	if err != nil {
		return nil, false, scramerr.AuthTransportErr(fmt.Errorf("submitting saslContinue (final): %w", err))
	}
	if serverErr := checkServerError(reply.Result); serverErr != nil {
		return nil, false, serverErr
	}

	e.state = FinalSent

	replyPayload, _, err := decodeConversationPayload(reply.Result)
	if err != nil {
		return nil, false, err
	}
	replyAttrs := parseAttributes(string(replyPayload))
	if reason, ok := replyAttrs["e"]; ok {
		return nil, false, scramerr.AuthServerErr(
			fmt.Errorf("server-final reported SASL error: %s", reason),
		)
	}
	vB64, ok := replyAttrs["v"]
	if !ok {
		return nil, false, scramerr.ServerSignatureInvalidErr(
			fmt.Errorf("server-final payload missing v="),
		)
	}
	gotSig, err := base64.StdEncoding.DecodeString(vB64)
	if err != nil {
		return nil, false, scramerr.ServerSignatureInvalidErr(
			fmt.Errorf("decoding server signature: %w", err),
		)
	}
	if !ConstantTimeEqual(gotSig, e.expectedServerSig) {
		return nil, false, scramerr.ServerSignatureInvalidErr(
			fmt.Errorf("server signature does not match expected value"),
		)
	}

	return reply.Result, isDone(reply.Result), nil
}

// retryEmpty implements transition 4 (RetryEmpty -> Done): submit one
// further empty-payload saslContinue and propagate its reply verbatim
// as the final outcome.
func (e *Engine) retryEmpty(ctx context.Context) (Document, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	doc := saslContinue(e.conversationID, []byte{})
	namespace := e.creds.source() + ".$cmd"
	reply, err := e.conn.SubmitCommand(ctx, namespace, doc)
	if err != nil {
		return nil, scramerr.AuthTransportErr(fmt.Errorf("submitting empty saslContinue: %w", err))
	}
	if serverErr := checkServerError(reply.Result); serverErr != nil {
		return nil, serverErr
	}
	return reply.Result, nil
}

// checkCancel reports ctx's cancellation as an AuthCancelled error, if
// any. It is checked at each of the engine's three suspension points
// (spec.md §5): cancellation aborts the attempt without any
// server-side compensating action, since none exists for a half-done
// SASL conversation.
func checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return scramerr.AuthCancelledErr(err)
	}
	return nil
}

// joinAuthMessage concatenates the three AuthMessage components with
// literal commas (spec.md §3): all three MUST be captured before any
// HMAC keyed by ServerKey or StoredKey is computed, which Run's
// control flow guarantees by constructing authMessage before deriving
// clientSignature or expectedServerSig.
func joinAuthMessage(clientFirstBareBytes, serverFirst, clientFinalWithoutProofBytes []byte) []byte {
	out := make([]byte, 0, len(clientFirstBareBytes)+len(serverFirst)+len(clientFinalWithoutProofBytes)+2)
	out = append(out, clientFirstBareBytes...)
	out = append(out, ',')
	out = append(out, serverFirst...)
	out = append(out, ',')
	out = append(out, clientFinalWithoutProofBytes...)
	return out
}

// decodeConversationPayload extracts the raw SASL payload bytes and
// conversationId from a server reply document. The payload may arrive
// as either a Binary value or a base64-encoded string (spec.md §9,
// open question #2); both are accepted.
func decodeConversationPayload(doc Document) ([]byte, int32, error) {
	var convID int32
	if v, ok := doc["conversationId"]; ok {
		switch id := v.(type) {
		case int32:
			convID = id
		case int:
			convID = int32(id)
		}
	}

	raw, ok := doc["payload"]
	if !ok {
		return nil, convID, scramerr.AuthServerErr(fmt.Errorf("server reply missing payload field"))
	}
	switch p := raw.(type) {
	case Binary:
		return []byte(p), convID, nil
	case []byte:
		return p, convID, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, convID, scramerr.AuthServerErr(fmt.Errorf("decoding base64 payload: %w", err))
		}
		return decoded, convID, nil
	default:
		return nil, convID, scramerr.AuthServerErr(fmt.Errorf("unsupported payload representation %T", raw))
	}
}

// isDone reports whether doc signals conversation completion: done ==
// true, or done absent with ok == 1 (spec.md §4.6 transition 3).
func isDone(doc Document) bool {
	if v, ok := doc["done"]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
		return false
	}
	return isOK(doc)
}

func isOK(doc Document) bool {
	switch v := doc["ok"].(type) {
	case float64:
		return v == 1
	case int32:
		return v == 1
	case int:
		return v == 1
	default:
		return false
	}
}

// checkServerError inspects a reply document for MongoDB's structured
// error shapes ($err, errmsg, or an ok != 1 result) and, if found,
// returns an AuthServerError carrying only the message and code
// (spec.md §7: error reports must never carry password material, and
// none of these fields can, since they come verbatim from the server).
func checkServerError(doc Document) error {
	if msg, ok := doc["$err"].(string); ok {
		return scramerr.AuthServerErr(fmt.Errorf("server error: %s", msg))
	}
	if msg, ok := doc["errmsg"].(string); ok {
		code := doc["code"]
		return scramerr.AuthServerErr(fmt.Errorf("server error (code=%v): %s", code, msg))
	}
	if !isOK(doc) && doc["done"] == nil && doc["payload"] == nil {
		// A reply with none of the expected SCRAM fields and ok != 1
		// is still a server-side failure, even without errmsg/$err.
		return scramerr.AuthServerErr(fmt.Errorf("server rejected command (code=%v)", doc["code"]))
	}
	return nil
}
