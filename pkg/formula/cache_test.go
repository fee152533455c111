package formula_test

import (
	"testing"

	"github.com/heatstack/heatplan/pkg/formula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReusesParsedExpression(t *testing.T) {
	c := formula.NewCache()

	first, err := c.Parse("VAL(8) + VAL(9)")
	require.NoError(t, err)
	second, err := c.Parse("VAL(8) + VAL(9)")
	require.NoError(t, err)
	assert.Same(t, first, second, "same source parses once")

	other, err := c.Parse("VAL(8) - VAL(9)")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestCacheParseError(t *testing.T) {
	c := formula.NewCache()

	_, err := c.Parse("VAL(")
	assert.Error(t, err)

	// the error is not sticky
	_, err = c.Parse("VAL(8)")
	assert.NoError(t, err)
}
