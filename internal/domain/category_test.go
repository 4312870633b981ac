package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCategoryCaseAndWhitespaceInvariant(t *testing.T) {
	inputs := []string{"JokerBola", "jokerbola", " JokerBola ", "JOKERBOLA"}
	for _, input := range inputs {
		c, ok := MatchCategory(input)
		require.True(t, ok, "input %q should match", input)
		assert.Equal(t, "JB", c.Code, "input %q", input)
		assert.Equal(t, "JokerBola", c.Name, "input %q", input)
	}
}

func TestMatchCategorySubstringBothDirections(t *testing.T) {
	// Input containing the key.
	c, ok := MatchCategory("my problem is with nagabola please help")
	require.True(t, ok)
	assert.Equal(t, "NB", c.Code)

	// Input that is a substring of the key.
	c, ok = MatchCategory("macan")
	require.True(t, ok)
	assert.Equal(t, "MB", c.Code)
}

func TestMatchCategoryRejectsEmptyAndUnknown(t *testing.T) {
	_, ok := MatchCategory("")
	assert.False(t, ok)

	_, ok = MatchCategory("   ")
	assert.False(t, ok)

	_, ok = MatchCategory("totally unknown site")
	assert.False(t, ok)
}

func TestCatalogCodesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Catalog {
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true
	}
}
