package scram

import "encoding/base64"

// Document stands in for the BSON document the real driver would
// build; the BSON codec itself is an external collaborator out of
// scope for this module (spec.md §1). A Document is simply a set of
// named fields with standard Go values, matching the shape a BSON
// library would marshal; being a Go map, it does not preserve field
// order.
type Document map[string]any

// Binary stands in for a BSON binary subtype, carrying the payload
// bytes that would otherwise be wrapped by the BSON codec (spec.md
// §9, open question #2: the wire protocol level decides whether the
// server payload travels as raw bytes or base64 text; this client
// always sends raw bytes via Binary and accepts either back, see
// decodeConversationPayload in engine.go).
type Binary []byte

// clientFirstBare builds "n=<escaped_username>,r=<base64_nonce>"
// exactly, the client-first-bare component that seeds the AuthMessage
// (spec.md §4.5).
func clientFirstBare(escapedUsername string, nonce []byte) []byte {
	return []byte(formatAttributes(
		"n", escapedUsername,
		"r", base64.StdEncoding.EncodeToString(nonce),
	))
}

// gs2Header is the fixed GS2 header: no channel binding, no authzid.
const gs2Header = "n,,"

// clientFirstMessage builds the saslStart command document for creds
// under mechanism m with the given nonce. The GS2 header is fixed at
// "n,," (spec.md §4.5); the payload is the GS2 header immediately
// followed by client-first-bare, with no separator, per RFC 5802.
func clientFirstMessage(creds Credentials, m *Mechanism, nonce []byte) (Document, []byte) {
	bare := clientFirstBare(EscapeUsername(creds.Username), nonce)
	payload := append([]byte(gs2Header), bare...)
	doc := Document{
		"saslStart":     int32(1),
		"mechanism":     m.Name(),
		"payload":       Binary(payload),
		"autoAuthorize": int32(1),
		"options": Document{
			"skipEmptyExchange": true,
		},
	}
	return doc, bare
}

// clientFinalWithoutProof builds "c=biws,r=<rnonce>": the literal
// "biws" is the base64 encoding of the GS2 header "n,,".
func clientFinalWithoutProof(rnonce string) []byte {
	return []byte(formatAttributes("c", "biws", "r", rnonce))
}

// clientFinal builds "c=biws,r=<rnonce>,p=<base64(clientProof)>"
// (spec.md §4.5).
func clientFinal(rnonce string, clientProof []byte) []byte {
	withoutProof := clientFinalWithoutProof(rnonce)
	proof := base64.StdEncoding.EncodeToString(clientProof)
	return append(append(withoutProof, ",p="...), proof...)
}

// saslContinue builds the saslContinue command document, echoing the
// server's conversationId and carrying payload as the binary SASL
// payload (spec.md §4.5).
func saslContinue(conversationID int32, payload []byte) Document {
	return Document{
		"saslContinue":   int32(1),
		"conversationId": conversationID,
		"payload":        Binary(payload),
	}
}
