package coltab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAppendAndLookup(t *testing.T) {
	tab, err := New("name", "score")
	require.NoError(t, err)
	require.NoError(t, tab.Append(StrVal("smith"), FloatVal(1.5)))
	require.NoError(t, tab.Append(StrVal("jones")))

	assert.Equal(t, 2, tab.Rows())
	assert.Equal(t, []string{"name", "score"}, tab.Names())
	assert.Equal(t, "smith", tab.Value(0, "name").Str)
	// Short rows pad with nulls.
	assert.True(t, tab.Value(1, "score").IsNull())
	// Unknown columns and out-of-range rows read as null.
	assert.True(t, tab.Value(0, "nope").IsNull())
	assert.True(t, tab.Value(9, "name").IsNull())

	col, ok := tab.Column("score")
	require.True(t, ok)
	assert.Len(t, col, 2)

	err = tab.Append(StrVal("a"), FloatVal(1), IntVal(2))
	assert.Error(t, err)
}

func TestTableDuplicateColumn(t *testing.T) {
	_, err := New("x", "x")
	assert.Error(t, err)
}

func TestValueCoercions(t *testing.T) {
	f, ok := IntVal(3).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = StrVal("x").AsFloat()
	assert.False(t, ok)

	b, ok := Null().AsBool()
	require.True(t, ok)
	assert.False(t, b)

	_, ok = IntVal(1).AsBool()
	assert.False(t, ok)
}

func TestValueCompare(t *testing.T) {
	assert.Equal(t, -1, IntVal(1).Compare(IntVal(2)))
	assert.Equal(t, 1, FloatVal(2.5).Compare(IntVal(2)))
	assert.Equal(t, 0, IntVal(2).Compare(FloatVal(2)))
	assert.Equal(t, -1, StrVal("a").Compare(StrVal("b")))
	assert.Equal(t, -1, BoolVal(false).Compare(BoolVal(true)))

	early := TimeVal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := TimeVal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -1, early.Compare(late))
	assert.Equal(t, 0, early.Compare(early))

	// Nulls order before everything.
	assert.Less(t, Null().Compare(StrVal("")), 0)
}

func TestValueKey(t *testing.T) {
	// Numeric keys unify across int and float representations.
	assert.Equal(t, IntVal(2).Key(), FloatVal(2).Key())
	assert.NotEqual(t, IntVal(2).Key(), IntVal(3).Key())
	assert.NotEqual(t, StrVal("2").Key(), IntVal(2).Key())
	assert.NotEqual(t, Null().Key(), StrVal("").Key())
}
