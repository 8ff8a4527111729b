package mongoconn

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	scram "github.com/scramauth/mongoscram/pkg/core/scram"
)

// preparePassword derives the same password representation the client
// engine would (spec.md §4.2), so the fake server's stored keys are
// consistent with what a real client authenticates against.
func preparePassword(m *scram.Mechanism, username, password string) ([]byte, error) {
	return m.PreparePassword(context.Background(), username, password)
}

// handleStart processes a saslStart command: parse client-first-bare,
// generate the server's nonce contribution, and return the
// server-first payload.
func (c *Conn) handleStart(command scram.Document) (*scram.Reply, error) {
	bin, ok := command["payload"].(scram.Binary)
	if !ok {
		return nil, fmt.Errorf("mongoconn: saslStart payload missing or wrong type")
	}
	payload := string(bin)
	// strip the fixed GS2 header "n,,"
	const gs2 = "n,,"
	if !strings.HasPrefix(payload, gs2) {
		return nil, fmt.Errorf("mongoconn: unsupported GS2 header in %q", payload)
	}
	bare := payload[len(gs2):]
	attrs := parseClientAttrs(bare)
	username := attrs["n"]
	clientNonce := attrs["r"]
	if username == "" || clientNonce == "" {
		return nil, fmt.Errorf("mongoconn: malformed client-first-bare %q", bare)
	}

	user, ok := c.server.users[username]
	if !ok {
		return errorReply(1, fmt.Sprintf("unknown user %q", username), 18), nil
	}

	serverNonceRaw := make([]byte, 18)
	if _, err := rand.Read(serverNonceRaw); err != nil {
		return nil, fmt.Errorf("mongoconn: generating server nonce: %w", err)
	}
	serverNonce := base64.RawStdEncoding.EncodeToString(serverNonceRaw)

	c.username = username
	c.clientNonce = clientNonce
	c.serverNonce = clientNonce + serverNonce
	c.user = user
	c.authMessage = append([]byte(bare), ',')

	serverFirst := fmt.Sprintf(
		"r=%s,s=%s,i=%d",
		c.serverNonce,
		base64.StdEncoding.EncodeToString(user.salt),
		user.iterations,
	)
	c.authMessage = append(c.authMessage, serverFirst...)

	return &scram.Reply{Result: scram.Document{
		"conversationId": int32(1),
		"done":           false,
		"payload":        scram.Binary(serverFirst),
		"ok":             float64(1),
	}}, nil
}

// handleContinue processes a saslContinue command: either the client's
// proof submission, or (when retried is already set) the terminal
// empty-payload follow-up.
func (c *Conn) handleContinue(command scram.Document) (*scram.Reply, error) {
	bin, ok := command["payload"].(scram.Binary)
	if !ok {
		return nil, fmt.Errorf("mongoconn: saslContinue payload missing or wrong type")
	}
	payload := string(bin)

	if c.retried {
		return &scram.Reply{Result: scram.Document{
			"conversationId": int32(1),
			"done":           true,
			"payload":        scram.Binary(""),
			"ok":             float64(1),
		}}, nil
	}

	attrs := parseClientAttrs(payload)
	rnonce := attrs["r"]
	proofB64 := attrs["p"]
	if rnonce != c.serverNonce || proofB64 == "" {
		return errorReply(1, "authentication failed", 18), nil
	}

	clientProof, err := base64.StdEncoding.DecodeString(proofB64)
	if err != nil {
		return errorReply(1, "malformed client proof", 18), nil
	}

	withoutProofIdx := strings.Index(payload, ",p=")
	if withoutProofIdx < 0 {
		return errorReply(1, "malformed client-final message", 18), nil
	}
	clientFinalWithoutProof := payload[:withoutProofIdx]
	authMessage := append(append([]byte{}, c.authMessage...), ',')
	authMessage = append(authMessage, clientFinalWithoutProof...)

	mechanism := mechanismForSize(len(c.user.storedKey))
	clientSignature := mechanism.HMAC(c.user.storedKey, authMessage)
	clientKey := scram.XOR(clientProof, clientSignature)
	gotStoredKey := mechanism.H(clientKey)
	if !scram.ConstantTimeEqual(gotStoredKey, c.user.storedKey) {
		return errorReply(1, "authentication failed", 18), nil
	}

	serverSignature := mechanism.HMAC(c.user.serverKey, authMessage)
	vPayload := "v=" + base64.StdEncoding.EncodeToString(serverSignature)

	done := true
	if c.server.RequireEmptyRetry {
		done = false
		c.retried = true
	}

	return &scram.Reply{Result: scram.Document{
		"conversationId": int32(1),
		"done":           done,
		"payload":        scram.Binary(vPayload),
		"ok":             float64(1),
	}}, nil
}

func mechanismForSize(size int) *scram.Mechanism {
	if size == scram.SHA1.Size() {
		return scram.SHA1
	}
	return scram.SHA256
}

func errorReply(conversationID int32, msg string, code int32) *scram.Reply {
	return &scram.Reply{Result: scram.Document{
		"conversationId": conversationID,
		"ok":             float64(0),
		"errmsg":         msg,
		"code":           code,
	}}
}

func parseClientAttrs(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			continue
		}
		out[pair[:idx]] = pair[idx+1:]
	}
	return out
}
