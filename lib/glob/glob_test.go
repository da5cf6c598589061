package glob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		want    bool
	}{
		// literals
		{"", "", true},
		{"", "a", false},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "ab", false},
		{"abc", "abcd", false},
		{"ABC", "abc", false}, // case-sensitive

		// star
		{"*", "", true},
		{"*", "anything", true},
		{"user:*", "user:1", true},
		{"user:*", "user:", true},
		{"user:*", "order:1", false},
		{"*:1", "user:1", true},
		{"u*r:1", "user:1", true},
		{"u*r:1", "ur:1", true},
		{"**", "x", true},
		{"a*b*c", "aXXbYYc", true},
		{"a*b*c", "abcb", false},
		{"*suffix", "has-suffix", true},
		{"*suffix", "suffix-not", false},

		// question mark
		{"?", "a", true},
		{"?", "", false},
		{"?", "ab", false},
		{"h?llo", "hello", true},
		{"h?llo", "hallo", true},
		{"h?llo", "hllo", false},
		{"h?llo*", "helloworld", true},

		// character classes
		{"[abc]", "b", true},
		{"[abc]", "d", false},
		{"[a-c]", "b", true},
		{"[a-c]", "d", false},
		{"[^a]", "b", true},
		{"[^a]", "a", false},
		{"key:[0-9]", "key:7", true},
		{"key:[0-9]", "key:x", false},
		{"[a-]", "a", true},
		{"[a-]", "-", true},

		// escaping
		{`\*`, "*", true},
		{`\*`, "x", false},
		{`\?`, "?", true},
		{`a\[b`, "a[b", true},

		// mixed
		{"user:?:[ab]*", "user:1:abc", true},
		{"user:?:[ab]*", "user:1:cba", false},
	}

	for _, tc := range cases {
		p, err := Compile(tc.pattern)
		require.NoError(t, err, "pattern %q", tc.pattern)
		assert.Equal(t, tc.want, p.Match(tc.key), "pattern %q key %q", tc.pattern, tc.key)
	}
}

func TestCompileMalformed(t *testing.T) {
	_, err := Compile("[abc")
	assert.Error(t, err)

	_, err = Compile("key:[0-9")
	assert.Error(t, err)
}

func TestMatchString(t *testing.T) {
	ok, err := MatchString("user:*", "user:42")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = MatchString("[", "x")
	assert.Error(t, err)
}
