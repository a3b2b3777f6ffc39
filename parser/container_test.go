package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerScopeBalance(t *testing.T) {
	var c container[string]
	c.open()
	c.open()
	c.current().push("inner")

	_, err := c.current().pop()
	require.NoError(t, err)
	require.NoError(t, c.close())
	require.NoError(t, c.close())

	assert.Error(t, c.close())
}

func TestContainerDirtyClose(t *testing.T) {
	var c container[string]
	c.open()
	c.current().push("leak")

	err := c.close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirtyContext))
}

func TestContainerOriginLookupWalksScopes(t *testing.T) {
	var c container[string]
	c.open()
	c.current().origins["outer"] = "o"
	c.open()
	c.current().origins["inner"] = "i"

	got, ok := c.origin("inner")
	require.True(t, ok)
	assert.Equal(t, "i", got)

	got, ok = c.origin("outer")
	require.True(t, ok)
	assert.Equal(t, "o", got)

	_, ok = c.origin("missing")
	assert.False(t, ok)

	// Inner registrations shadow outer ones.
	c.current().origins["outer"] = "shadow"
	got, _ = c.origin("outer")
	assert.Equal(t, "shadow", got)
}

func TestContainerFetch(t *testing.T) {
	var c container[int]
	c.open()
	c.current().push(1)

	got, err := c.fetch()
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = c.fetch()
	assert.Error(t, err)
}
