package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	for _, tt := range []struct {
		token string
		want  Direction
	}{
		{"asc", Ascending},
		{"ASC", Ascending},
		{"ascending", Ascending},
		{"desc", Descending},
		{"DESC", Descending},
		{"Descending", Descending},
	} {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseDirection(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDirection("sideways")
	require.Error(t, err)
	assert.True(t, IsGrammar(err))
}

func TestMakeOrdering(t *testing.T) {
	student := testStudent(t)
	class := column(t, student, "class")
	score := column(t, student, "score")

	// Bare features default to ascending.
	got, err := MakeOrdering(class, score)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Ascending, got[0].Direction)
	assert.Equal(t, Ascending, got[1].Direction)

	// A direction token applies to the preceding feature only.
	got, err = MakeOrdering(class, score, Descending)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Ascending, got[0].Direction)
	assert.Equal(t, Descending, got[1].Direction)

	// String tokens and explicit orderings pass through.
	got, err = MakeOrdering(class, "desc", Ordering{Feature: score, Direction: Ascending})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Descending, got[0].Direction)
	assert.True(t, Equal(score, got[1].Feature))
	assert.Equal(t, Ascending, got[1].Direction)

	// A direction with no preceding feature is malformed.
	_, err = MakeOrdering(Descending, class)
	require.Error(t, err)
	assert.True(t, IsGrammar(err))

	// So is anything that is neither a feature nor a direction.
	_, err = MakeOrdering(42)
	require.Error(t, err)
}
