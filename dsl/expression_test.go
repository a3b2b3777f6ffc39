package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlio/relq/kind"
)

func TestArithmeticKindPromotion(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")
	class := column(t, student, "class")

	sum, err := Add(class, literal(t, 1))
	require.NoError(t, err)
	assert.True(t, kind.Integer.Match(sum.Kind()))

	mixed, err := Mul(class, score)
	require.NoError(t, err)
	assert.True(t, kind.Float.Match(mixed.Kind()))

	_, err = Add(column(t, student, "surname"), literal(t, 1))
	require.Error(t, err)
	assert.True(t, IsGrammar(err))
}

func TestComparisonOperandKinds(t *testing.T) {
	student := testStudent(t)

	// Numerics compare across widths.
	c, err := Lt(column(t, student, "class"), column(t, student, "score"))
	require.NoError(t, err)
	assert.True(t, kind.Boolean.Match(c.Kind()))

	// Identical non-numeric kinds compare too.
	_, err = Eq(column(t, student, "surname"), literal(t, "smith"))
	require.NoError(t, err)

	// Mismatched non-numeric kinds do not.
	_, err = Eq(column(t, student, "surname"), column(t, student, "birthday"))
	require.Error(t, err)
	assert.True(t, IsGrammar(err))
}

func TestLogicalRequiresPredicates(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")

	low, err := Lt(score, literal(t, 2))
	require.NoError(t, err)

	combined, err := And(low, low)
	require.NoError(t, err)
	assert.True(t, kind.Boolean.Match(combined.Kind()))

	negated, err := NewNot(low)
	require.NoError(t, err)
	assert.True(t, kind.Boolean.Match(negated.Kind()))
	assert.Equal(t, 1, negated.Factors().Len())
}

func TestCastKind(t *testing.T) {
	student := testStudent(t)

	c, err := NewCast(column(t, student, "class"), kind.String)
	require.NoError(t, err)
	assert.True(t, kind.String.Match(c.Kind()))
	require.Len(t, c.Operands(), 1)
}

func TestTemporalAndNumericFunctions(t *testing.T) {
	student := testStudent(t)

	y, err := NewYear(column(t, student, "birthday"))
	require.NoError(t, err)
	assert.True(t, kind.Integer.Match(y.Kind()))

	_, err = NewYear(column(t, student, "score"))
	require.Error(t, err)
	assert.True(t, IsGrammar(err))

	a, err := NewAbs(column(t, student, "score"))
	require.NoError(t, err)
	assert.True(t, kind.Float.Match(a.Kind()))

	c, err := NewCeil(column(t, student, "score"))
	require.NoError(t, err)
	assert.True(t, kind.Integer.Match(c.Kind()))

	f, err := NewFloor(column(t, student, "score"))
	require.NoError(t, err)
	assert.True(t, kind.Integer.Match(f.Kind()))

	_, err = NewAbs(column(t, student, "surname"))
	require.Error(t, err)
}

func TestAggregateKinds(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")
	class := column(t, student, "class")

	count, err := Count(column(t, student, "surname"))
	require.NoError(t, err)
	assert.True(t, kind.Integer.Match(count.Kind()))

	avg, err := Avg(class)
	require.NoError(t, err)
	assert.True(t, kind.Float.Match(avg.Kind()))

	sum, err := Sum(class)
	require.NoError(t, err)
	assert.True(t, kind.Integer.Match(sum.Kind()))

	max, err := Max(score)
	require.NoError(t, err)
	assert.True(t, kind.Float.Match(max.Kind()))

	_, err = Avg(column(t, student, "surname"))
	require.Error(t, err)
	assert.True(t, IsGrammar(err))
}

func TestWindowPartitionRejectsAggregates(t *testing.T) {
	student := testStudent(t)

	agg, err := Sum(column(t, student, "score"))
	require.NoError(t, err)

	_, err = NewWindow(agg, []Operable{agg}, nil)
	require.Error(t, err)
	assert.True(t, IsGrammar(err))

	win, err := NewWindow(agg, []Operable{column(t, student, "class")},
		[]Ordering{{Feature: column(t, student, "score"), Direction: Descending}})
	require.NoError(t, err)
	assert.True(t, kind.Float.Match(win.Kind()))
}

func TestWindowOrderingRejectsAggregates(t *testing.T) {
	student := testStudent(t)

	agg, err := Sum(column(t, student, "score"))
	require.NoError(t, err)

	_, err = NewWindow(agg, []Operable{column(t, student, "class")},
		[]Ordering{{Feature: agg, Direction: Ascending}})
	require.Error(t, err)
	assert.True(t, IsGrammar(err))

	_, err = NewWindow(agg, nil, []Ordering{{}})
	require.Error(t, err)
	assert.True(t, IsGrammar(err))
}

func TestAliasUnwrapsName(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")

	a, err := Alias(score, "points")
	require.NoError(t, err)
	name, ok := FeatureName(a)
	require.True(t, ok)
	assert.Equal(t, "points", name)

	name, ok = FeatureName(score)
	require.True(t, ok)
	assert.Equal(t, "score", name)

	sum, err := Add(score, score)
	require.NoError(t, err)
	_, ok = FeatureName(sum)
	assert.False(t, ok)

	_, err = Alias(score, "")
	require.Error(t, err)
}
