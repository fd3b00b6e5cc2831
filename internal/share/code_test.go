package share

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)

		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected character %q in %s", c, code)
		}

		seen[code] = true
	}

	// 100 draws from ~900M combinations should not collide.
	assert.Len(t, seen, 100)
}

func TestCodeAlphabetUnambiguous(t *testing.T) {
	for _, c := range "01OIL" {
		assert.NotContains(t, codeAlphabet, string(c))
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc234", "ABC234"},
		{" ABC234 ", "ABC234"},
		{"abc-234", "ABC234"},
		{"AB C2 34", "ABC234"},
		{"ABC234", "ABC234"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCode(tt.in))
	}
}
