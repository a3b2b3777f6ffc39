package lambda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlio/relq/coltab"
)

func TestFrameAddValidation(t *testing.T) {
	fr := newFrame(2)
	require.NoError(t, fr.add("a", []coltab.Value{coltab.IntVal(1), coltab.IntVal(2)}))

	err := fr.add("a", []coltab.Value{coltab.IntVal(3), coltab.IntVal(4)})
	assert.ErrorContains(t, err, "duplicate")

	err = fr.add("b", []coltab.Value{coltab.IntVal(3)})
	assert.ErrorContains(t, err, "2 rows")
}

func TestFrameSliceAndRekey(t *testing.T) {
	fr := newFrame(3)
	require.NoError(t, fr.add("x", []coltab.Value{coltab.IntVal(1), coltab.IntVal(2), coltab.IntVal(3)}))
	require.NoError(t, fr.add("y", []coltab.Value{coltab.StrVal("a"), coltab.StrVal("b"), coltab.StrVal("c")}))

	sub := fr.slice([]int{2, 0})
	require.Equal(t, 2, sub.rows)
	v, err := sub.value("y", 0)
	require.NoError(t, err)
	assert.Equal(t, "c", v.Str)

	renamed, err := sub.rekey([]string{"l.x", "l.y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l.x", "l.y"}, renamed.keys)
	_, err = renamed.value("x", 0)
	assert.Error(t, err)

	_, err = sub.rekey([]string{"only"})
	assert.ErrorContains(t, err, "rekey")
}

func TestFrameRowKeyUnifiesNumerics(t *testing.T) {
	fr := newFrame(2)
	require.NoError(t, fr.add("n", []coltab.Value{coltab.IntVal(1), coltab.FloatVal(1.0)}))
	assert.Equal(t, fr.rowKey(0), fr.rowKey(1))
}
