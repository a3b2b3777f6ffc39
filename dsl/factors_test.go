package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorDecomposition(t *testing.T) {
	student := testStudent(t)
	school := testSchool(t)

	low, err := Lt(column(t, student, "score"), literal(t, 2))
	require.NoError(t, err)
	named, err := Eq(column(t, school, "name"), literal(t, "oak"))
	require.NoError(t, err)

	// A comparison over a single table factors to that table.
	factors := low.Factors()
	require.Equal(t, 1, factors.Len())
	got, ok := factors.Get(student)
	require.True(t, ok)
	assert.True(t, Equal(low, got))

	// A conjunction over two tables carries one factor per table.
	both, err := And(low, named)
	require.NoError(t, err)
	factors = both.Factors()
	require.Equal(t, 2, factors.Len())
	got, ok = factors.Get(school)
	require.True(t, ok)
	assert.True(t, Equal(named, got))

	// A comparison spanning two tables cannot be pushed to either.
	crossing, err := Eq(column(t, school, "id"), column(t, student, "school"))
	require.NoError(t, err)
	assert.Equal(t, 0, crossing.Factors().Len())
}

func TestFactorMergeLaws(t *testing.T) {
	student := testStudent(t)
	school := testSchool(t)

	low, err := Lt(column(t, student, "score"), literal(t, 2))
	require.NoError(t, err)
	high, err := Gt(column(t, student, "score"), literal(t, 0))
	require.NoError(t, err)
	named, err := Eq(column(t, school, "name"), literal(t, "oak"))
	require.NoError(t, err)

	a := low.Factors()
	b := high.Factors()
	c := named.Factors()

	// Conjunction of same-table factors conjoins the predicates.
	merged := a.And(b)
	require.Equal(t, 1, merged.Len())
	want, err := And(low, high)
	require.NoError(t, err)
	got, ok := merged.Get(student)
	require.True(t, ok)
	assert.True(t, Equal(want, got))

	// Disjoint tables keep their own entries under either operator.
	assert.Equal(t, 2, a.And(c).Len())
	assert.Equal(t, 2, a.Or(c).Len())

	// Merging identical factors is idempotent.
	assert.True(t, a.And(a).Or(a).Equal(a))
	assert.True(t, a.Or(a).Equal(a))
}

func TestGroundDeduplicates(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")

	sum, err := Add(score, score)
	require.NoError(t, err)
	shifted, err := Add(score, literal(t, 1))
	require.NoError(t, err)

	grounded := Ground(sum, shifted)
	require.Len(t, grounded, 1)
	assert.True(t, Equal(score, grounded[0]))
}

func TestGroundStopsAtSourceBoundary(t *testing.T) {
	student := testStudent(t)

	q, err := Select(student, column(t, student, "surname"))
	require.NoError(t, err)
	ref, err := NewReference(q, "inner")
	require.NoError(t, err)

	el, err := NewElement(ref, "surname")
	require.NoError(t, err)
	grounded := Ground(el)
	require.Len(t, grounded, 1)
	assert.True(t, Equal(el, grounded[0]))
}

func TestOriginTables(t *testing.T) {
	student := testStudent(t)
	school := testSchool(t)

	crossing, err := Eq(column(t, school, "id"), column(t, student, "school"))
	require.NoError(t, err)
	tables := OriginTables(crossing)
	require.Len(t, tables, 2)
	assert.Equal(t, "school", tables[0].Name())
	assert.Equal(t, "student", tables[1].Name())

	// Reference elements do not expose their instance tables.
	ref, err := NewReference(student, "s")
	require.NoError(t, err)
	el, err := NewElement(ref, "score")
	require.NoError(t, err)
	assert.Empty(t, OriginTables(el))
}

func TestContainsCumulative(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")

	assert.False(t, ContainsCumulative(score))

	agg, err := Sum(score)
	require.NoError(t, err)
	wrapped, err := Gt(agg, literal(t, 10))
	require.NoError(t, err)
	assert.True(t, ContainsCumulative(wrapped))
	assert.False(t, ContainsWindow(wrapped))

	win, err := NewWindow(agg, []Operable{column(t, student, "class")}, nil)
	require.NoError(t, err)
	assert.True(t, ContainsCumulative(win))
	assert.True(t, ContainsWindow(win))
}
