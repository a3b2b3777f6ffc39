package sqltext

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/formlio/relq/kind"
	"github.com/formlio/relq/parser"
)

// Literal encodes a constant per its kind: numerics as bare tokens, strings
// single-quoted, temporals with explicit DATE/TIMESTAMP markers and arrays
// recursively.
func (g Generator) Literal(value any, k kind.Kind) (string, error) {
	switch {
	case kind.Boolean.Match(k):
		if value.(bool) {
			return "TRUE", nil
		}
		return "FALSE", nil
	case kind.Integer.Match(k):
		return strconv.FormatInt(value.(int64), 10), nil
	case kind.Float.Match(k):
		return strconv.FormatFloat(value.(float64), 'g', -1, 64), nil
	case kind.Decimal.Match(k):
		return value.(*apd.Decimal).Text('f'), nil
	case kind.String.Match(k):
		return "'" + strings.ReplaceAll(value.(string), "'", "''") + "'", nil
	case kind.Date.Match(k):
		return "DATE '" + value.(time.Time).Format(kind.DateLayout) + "'", nil
	case kind.Timestamp.Match(k):
		t := value.(time.Time)
		layout := kind.TimestampLayout
		if t.Nanosecond() != 0 {
			layout = kind.TimestampLayoutFrac
		}
		return "TIMESTAMP '" + t.Format(layout) + "'", nil
	}
	if array, ok := k.(kind.Array); ok {
		return g.array(value, array)
	}
	return "", &parser.UnsupportedError{Construct: "literal kind " + k.Name()}
}

func (g Generator) array(value any, k kind.Array) (string, error) {
	elements, ok := value.([]any)
	if !ok {
		return "", fmt.Errorf("array literal holds %T", value)
	}
	encoded := make([]string, len(elements))
	for i, e := range elements {
		s, err := g.Literal(e, k.Element)
		if err != nil {
			return "", err
		}
		encoded[i] = s
	}
	return "ARRAY[" + strings.Join(encoded, ", ") + "]", nil
}

var _ parser.Generator[string] = Generator{}
