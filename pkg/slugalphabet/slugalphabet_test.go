package slugalphabet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"size 1", 1},
		{"size 6", 6},
		{"size 10", 10},
		{"size 0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s1 := Generate(tt.size)
			s2 := Generate(tt.size)

			assert.Len(t, s1, tt.size)
			assert.Len(t, s2, tt.size)
			if tt.size > 0 {
				assert.NotEqual(t, s1, s2)
			}
			for _, r := range s1 {
				assert.True(t, strings.ContainsRune(Alphabet, r))
			}
		})
	}
}

func TestGenerateBatch_Deduplicated(t *testing.T) {
	const n, length = 200, 6
	batch := GenerateBatch(n, length)

	require.Len(t, batch, n)

	seen := make(map[string]struct{}, n)
	for _, s := range batch {
		require.Len(t, s, length)
		_, dup := seen[s]
		require.False(t, dup, "batch contained a duplicate slug")
		seen[s] = struct{}{}
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("aP6eoE", 6))
	assert.False(t, ValidSlug("aP6eo", 6), "wrong length")
	assert.False(t, ValidSlug("aP6e-E", 6), "invalid character")
	assert.False(t, ValidSlug("", 6))
}

func TestValidAlias(t *testing.T) {
	assert.True(t, ValidAlias("abc", 3, 64))
	assert.False(t, ValidAlias("ab", 3, 64), "too short")
	assert.False(t, ValidAlias(strings.Repeat("a", 65), 3, 64), "too long")
	assert.False(t, ValidAlias("ta ken", 3, 64), "invalid character")
}
