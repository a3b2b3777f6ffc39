package dsl

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed node identity. Version suffix enables
// future encoding migration.
const hashDomain = "relq/node/v1"

// encoder accumulates the canonical byte form of a node tree. The encoding
// is unambiguous: every node is a tagged, parenthesized group and every
// string atom is NFC-normalized and length-prefixed, so no two distinct
// trees share an encoding.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) open(tag string) {
	e.buf.WriteByte('(')
	e.atom(tag)
}

func (e *encoder) close() {
	e.buf.WriteByte(')')
}

func (e *encoder) atom(s string) {
	s = norm.NFC.String(s)
	e.buf.WriteString(strconv.Itoa(len(s)))
	e.buf.WriteByte(':')
	e.buf.WriteString(s)
}

func (e *encoder) int(n int64) {
	e.atom(strconv.FormatInt(n, 10))
}

func (e *encoder) node(n Node) {
	if n == nil {
		e.buf.WriteString("()")
		return
	}
	n.encode(e)
}

// value encodes a literal's native value. Literal construction casts values
// into their kind's native representation, so the supported types are
// closed.
func (e *encoder) value(v any) {
	switch val := v.(type) {
	case nil:
		e.atom("null")
	case bool:
		e.atom(strconv.FormatBool(val))
	case int64:
		e.atom(strconv.FormatInt(val, 10))
	case float64:
		e.atom(strconv.FormatFloat(val, 'g', -1, 64))
	case *apd.Decimal:
		e.atom(val.Text('f'))
	case string:
		e.atom(val)
	case time.Time:
		e.atom(val.UTC().Format(time.RFC3339Nano))
	case []any:
		e.open("seq")
		for _, elem := range val {
			e.value(elem)
		}
		e.close()
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.open("rec")
		for _, k := range keys {
			e.atom(k)
			e.value(val[k])
		}
		e.close()
	default:
		// Unreachable for values produced by kind casts.
		e.atom(fmt.Sprintf("%v", val))
	}
}

func canonical(n Node) []byte {
	var e encoder
	e.node(n)
	return e.buf.Bytes()
}

// Hash returns the content-addressed identity of a node: a domain-separated
// SHA-256 over its canonical byte form. Structurally equal nodes hash
// identically regardless of where they were built.
func Hash(n Node) string {
	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00}) // Null separator between domain and data
	h.Write(canonical(n))
	return hex.EncodeToString(h.Sum(nil))
}

// Equal reports structural equality of two nodes by comparing their
// canonical forms. It never consults instance identity.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return bytes.Equal(canonical(a), canonical(b))
}
