package kind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, k := range []Kind{
		Boolean, Integer, Float, Decimal, String, Date, Timestamp,
		Array{Element: String},
		Map{Key: String, Value: Array{Element: Integer}},
	} {
		parsed, err := Parse(k.Name())
		require.NoError(t, err, k.Name())
		assert.True(t, parsed.Match(k), k.Name())
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "number", "array<>", "array<number>", "map<string>"} {
		_, err := Parse(name)
		assert.Error(t, err, name)
	}
}
