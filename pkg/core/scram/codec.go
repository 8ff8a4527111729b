package scram

import "strings"

// parseAttributes splits a SCRAM attribute-pair string (e.g.
// "r=abc,s=XYZ==,i=4096") into a key -> value map. Each element is
// split on its first "=" only, since a value (such as base64-encoded
// salt) may itself contain "=". Duplicate keys are not expected on the
// wire, but if present, the last occurrence wins.
func parseAttributes(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			out[pair] = ""
			continue
		}
		out[pair[:idx]] = pair[idx+1:]
	}
	return out
}

// formatAttributes joins ordered key=value pairs with ",", in the
// exact order given by kvs (k0, v0, k1, v1, ...). The codec does not
// reorder attributes; SCRAM message types have a fixed attribute
// order, and it is the caller's responsibility to supply kvs in that
// order.
func formatAttributes(kvs ...string) string {
	if len(kvs)%2 != 0 {
		panic("scram: formatAttributes requires an even number of key/value arguments")
	}
	var b strings.Builder
	for i := 0; i < len(kvs); i += 2 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(kvs[i])
		b.WriteByte('=')
		b.WriteString(kvs[i+1])
	}
	return b.String()
}

// EscapeUsername escapes a username for use in the client-first
// message's "n=" attribute, replacing "=" with "=3D" and "," with
// "=2C".
//
// Deviation from strict RFC 5802: only the first occurrence of each
// character is replaced, not every occurrence. This mirrors the
// reference implementation this client was modeled on and is
// preserved intentionally (spec.md §9, open question); a username
// containing two or more "=" or "," characters is therefore only
// partially escaped. A username with none of these characters is
// returned unchanged.
func EscapeUsername(username string) string {
	username = strings.Replace(username, "=", "=3D", 1)
	username = strings.Replace(username, ",", "=2C", 1)
	return username
}
