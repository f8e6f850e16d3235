package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLEncodeDecode(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 128)
	n := URLEncode("A B+C%", buf)
	require.Equal(t, "A%20B%2BC%25", string(buf[:n]))
	assert.Equal(t, "A B+C%", URLDecode(string(buf[:n])))
}

func TestURLEncodeTruncation(t *testing.T) {
	t.Parallel()
	buf := make([]byte, 5)
	n := URLEncode("abcdef", buf)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(buf[:n]))

	// An escape never gets split across the limit.
	n = URLEncode("ab ", buf)
	assert.Equal(t, "ab", string(buf[:n]))

	assert.Equal(t, 0, URLEncode("x", nil))
}

func TestURLDecodeMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"%2G", "%2G"},
		{"%", "%"},
		{"%2", "%2"},
		{"a+b", "a+b"},
		{"%41%6", "A%6"},
		{"100%25", "100%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, URLDecode(tt.in), "decode %q", tt.in)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "plain", "with space", "a=b&c;d\nnewline", "100%"} {
		assert.Equal(t, s, URLDecode(EncodeToString(s)), "round-trip %q", s)
	}
}

func TestCaseHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int('a'), ToLower('A'))
	assert.Equal(t, int('z'), ToLower('z'))
	assert.Equal(t, int('A'), ToUpper('a'))
	assert.Equal(t, 0x2603, ToLower(0x2603), "out-of-range values pass through")
	assert.Equal(t, -7, ToUpper(-7))
}

func TestIndexFold(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 5, IndexFold("AlphaBetaGamma", "bEtA"))
	assert.Equal(t, "BetaGamma", SearchFold("AlphaBetaGamma", "bEtA"))
	assert.Equal(t, -1, IndexFold("AlphaBetaGamma", "delta"))
	assert.Equal(t, "", SearchFold("AlphaBetaGamma", "delta"))
	assert.Equal(t, 0, IndexFold("anything", ""))
}

func TestSeparateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"alpha", "beta", "gamma"},
		SeparateString("alpha|:beta|:gamma", "|:", 4))
	assert.Equal(t, []string{"alpha", "beta|:gamma"},
		SeparateString("alpha|:beta|:gamma", "|:", 2))
	assert.Equal(t, []string{"solo"}, SeparateString("solo", "|:", 4))
	assert.Equal(t, []string{"", ""}, SeparateString("|:", "|:", 4))
	assert.Nil(t, SeparateString("", "|:", 4))
	assert.Nil(t, SeparateString("x", "", 4))
	assert.Nil(t, SeparateString("x", "|:", 0))
}
