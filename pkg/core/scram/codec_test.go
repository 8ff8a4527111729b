package scram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttributesRoundTrip(t *testing.T) {
	s := "r=fyko+d2lbbFgONRv9qkxdawL,s=QSXCR+Q6sek8bf92,i=4096"
	attrs := parseAttributes(s)
	assert.Equal(t, "fyko+d2lbbFgONRv9qkxdawL", attrs["r"])
	assert.Equal(t, "QSXCR+Q6sek8bf92", attrs["s"])
	assert.Equal(t, "4096", attrs["i"])
	assert.Equal(t, s, formatAttributes("r", attrs["r"], "s", attrs["s"], "i", attrs["i"]))
}

func TestParseAttributesValueContainingEquals(t *testing.T) {
	// a base64 value may itself contain "=" padding; only the first "="
	// in each comma-separated element is the key/value separator.
	attrs := parseAttributes("s=QSXCR+Q6sek8bf92==,i=4096")
	assert.Equal(t, "QSXCR+Q6sek8bf92==", attrs["s"])
}

func TestParseAttributesDuplicateKeyLastWins(t *testing.T) {
	attrs := parseAttributes("r=one,r=two")
	assert.Equal(t, "two", attrs["r"])
}

func TestFormatAttributesPreservesOrder(t *testing.T) {
	got := formatAttributes("n", "alice", "r", "abc123")
	assert.Equal(t, "n=alice,r=abc123", got)
}

func TestFormatAttributesOddArgsPanics(t *testing.T) {
	assert.Panics(t, func() {
		formatAttributes("n", "alice", "r")
	})
}

func TestEscapeUsernameOnlyFirstOccurrence(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"no special chars", "alice", "alice"},
		{"single equals", "a=b", "a=3Db"},
		{"single comma", "a,b", "a=2Cb"},
		{"two equals only first replaced", "a=b=c", "a=3Db=c"},
		{"two commas only first replaced", "a,b,c", "a=2Cb,c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EscapeUsername(tc.in))
		})
	}
}

func ExampleEscapeUsername() {
	fmt.Println(EscapeUsername("user,name"))
	// Output: user=2Cname
}

func ExampleformatAttributes() {
	fmt.Println(formatAttributes("c", "biws", "r", "abcd1234"))
	// Output: c=biws,r=abcd1234
}
