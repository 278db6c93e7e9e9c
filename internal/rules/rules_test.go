package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndMatch(t *testing.T) {
	r, err := Compile(`result.contains("white") && spec.contains("white")`)
	require.NoError(t, err)

	ok, err := r.Match("white powder", "should be white")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Match("cream powder", "should be white")
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := Compile(`result.contains("white") && spec.contains("white")`)
	require.NoError(t, err)
	assert.Equal(t, r.String(), again.String())
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(`result.`)
	assert.Error(t, err)

	_, err = Compile(`size(result)`)
	assert.ErrorContains(t, err, "must evaluate to bool")

	_, err = Compile(`unknown == "x"`)
	assert.Error(t, err)
}
