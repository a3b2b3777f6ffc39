package dsl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/formlio/relq/kind"
)

// testStudent builds the canonical student table used across the tests.
func testStudent(t *testing.T) *Table {
	t.Helper()
	student, err := NewTable("student",
		NewField(kind.Integer, "id"),
		NewField(kind.String, "surname"),
		NewField(kind.Float, "score"),
		NewField(kind.Integer, "class"),
		NewField(kind.Integer, "school"),
		NewField(kind.Date, "birthday"),
	)
	require.NoError(t, err)
	return student
}

// testSchool builds the canonical school table used across the tests.
func testSchool(t *testing.T) *Table {
	t.Helper()
	school, err := NewTable("school",
		NewField(kind.Integer, "id"),
		NewField(kind.String, "name"),
	)
	require.NoError(t, err)
	return school
}

func column(t *testing.T, table *Table, name string) *Column {
	t.Helper()
	c, err := table.Column(name)
	require.NoError(t, err)
	return c
}

func literal(t *testing.T, value any) *Literal {
	t.Helper()
	l, err := NewLiteral(value)
	require.NoError(t, err)
	return l
}
