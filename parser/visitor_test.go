package parser

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
)

// textGen is a minimal string backend exercising every hook. It is sloppy
// about quoting on purpose; the interesting part is the traversal.
type textGen struct{}

func (textGen) Table(t *dsl.Table, fields []dsl.Field, filter *string) (string, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	out := fmt.Sprintf("%s<%s>", t.Name(), strings.Join(names, ","))
	if filter != nil {
		out += "{" + *filter + "}"
	}
	return out, nil
}

func (textGen) Reference(instance, name string) (string, string, error) {
	return instance + " AS " + name, name, nil
}

func (textGen) Join(left, right string, condition *string, k dsl.JoinKind) (string, error) {
	out := left + " " + strings.ToUpper(k.String()) + " JOIN " + right
	if condition != nil {
		out += " ON " + *condition
	}
	return out, nil
}

func (textGen) Set(left, right string, k dsl.SetKind) (string, error) {
	return left + " " + strings.ToUpper(k.String()) + " " + right, nil
}

func (textGen) Query(source string, features []string, where *string, groupby []string,
	having *string, orderby []string, rows *dsl.Rows) (string, error) {
	out := "SELECT " + strings.Join(features, ", ") + " FROM " + source
	if where != nil {
		out += " WHERE " + *where
	}
	if len(groupby) > 0 {
		out += " GROUP BY " + strings.Join(groupby, ", ")
	}
	if having != nil {
		out += " HAVING " + *having
	}
	if len(orderby) > 0 {
		out += " ORDER BY " + strings.Join(orderby, ", ")
	}
	if rows != nil {
		out += fmt.Sprintf(" LIMIT %d", rows.Count)
	}
	return out, nil
}

func (textGen) Column(t *dsl.Table, name string) (string, error) {
	return t.Name() + "." + name, nil
}

func (textGen) Element(origin, name string) (string, error) {
	return origin + "." + name, nil
}

func (textGen) Literal(value any, k kind.Kind) (string, error) {
	return fmt.Sprint(value), nil
}

func (textGen) Alias(feature, name string) (string, error) {
	return feature + " AS " + name, nil
}

func (textGen) Expression(e dsl.Expression, operands []string) (string, error) {
	switch n := e.(type) {
	case *dsl.Comparison:
		return operands[0] + " " + n.Op().Symbol() + " " + operands[1], nil
	case *dsl.Logical:
		return operands[0] + " " + n.Op().Symbol() + " " + operands[1], nil
	case *dsl.Arithmetic:
		return operands[0] + " " + n.Op().Symbol() + " " + operands[1], nil
	case *dsl.Not:
		return "NOT " + operands[0], nil
	}
	return "", &UnsupportedError{Construct: "expression", Node: e}
}

func (textGen) Aggregate(a *dsl.Aggregate, operand string) (string, error) {
	return fmt.Sprintf("%s(%s)", a.Op(), operand), nil
}

func (textGen) Window(w *dsl.Window, function string, partition, ordering []string) (string, error) {
	return "", &UnsupportedError{Construct: "window function", Node: w}
}

func (textGen) Ordering(feature string, d dsl.Direction) (string, error) {
	if d == dsl.Descending {
		return feature + " DESC", nil
	}
	return feature + " ASC", nil
}

func testStudent(t *testing.T) *dsl.Table {
	t.Helper()
	student, err := dsl.NewTable("student",
		dsl.NewField(kind.Integer, "id"),
		dsl.NewField(kind.String, "surname"),
		dsl.NewField(kind.Float, "score"),
		dsl.NewField(kind.Integer, "school"),
	)
	require.NoError(t, err)
	return student
}

func column(t *testing.T, table *dsl.Table, name string) *dsl.Column {
	t.Helper()
	c, err := table.Column(name)
	require.NoError(t, err)
	return c
}

func TestParseTableProjection(t *testing.T) {
	student := testStudent(t)

	low, err := dsl.Lt(column(t, student, "score"), mustLiteral(t, 2))
	require.NoError(t, err)
	q, err := dsl.Select(student, column(t, student, "surname"))
	require.NoError(t, err)
	q, err = dsl.Where(q, low)
	require.NoError(t, err)

	out, err := Parse[string](q, textGen{})
	require.NoError(t, err)
	// The scan is narrowed to the referenced fields and carries the
	// pushed-down factor.
	assert.Equal(t,
		"SELECT student.surname FROM student<surname,score>{student.score < 2} WHERE student.score < 2",
		out)
}

func TestParseDisjunctivePrefilterStaysInWhere(t *testing.T) {
	student := testStudent(t)
	school, err := dsl.NewTable("school",
		dsl.NewField(kind.Integer, "id"),
		dsl.NewField(kind.String, "name"),
	)
	require.NoError(t, err)

	cond, err := dsl.Eq(column(t, school, "id"), column(t, student, "school"))
	require.NoError(t, err)
	join, err := dsl.NewJoin(student, school, cond, dsl.InnerJoin)
	require.NoError(t, err)

	cheap, err := dsl.Lt(column(t, student, "score"), mustLiteral(t, 2))
	require.NoError(t, err)
	oak, err := dsl.Eq(column(t, school, "name"), mustLiteral(t, "oak"))
	require.NoError(t, err)
	either, err := dsl.Or(cheap, oak)
	require.NoError(t, err)

	q, err := dsl.Where(join, either)
	require.NoError(t, err)
	q, err = dsl.Select(q, column(t, student, "surname"))
	require.NoError(t, err)

	out, err := Parse[string](q, textGen{})
	require.NoError(t, err)
	// Neither branch implies the disjunction, so no scan gets a filter;
	// the WHERE clause carries the whole predicate.
	assert.NotContains(t, out, "{")
	assert.Contains(t, out, "WHERE student.score < 2 OR school.name = oak")
}

func TestParseSingleTableDisjunctionPushdown(t *testing.T) {
	student := testStudent(t)

	low, err := dsl.Lt(column(t, student, "score"), mustLiteral(t, 2))
	require.NoError(t, err)
	high, err := dsl.Gt(column(t, student, "score"), mustLiteral(t, 4))
	require.NoError(t, err)
	either, err := dsl.Or(low, high)
	require.NoError(t, err)

	q, err := dsl.Where(student, either)
	require.NoError(t, err)
	q, err = dsl.Select(q, column(t, student, "surname"))
	require.NoError(t, err)

	out, err := Parse[string](q, textGen{})
	require.NoError(t, err)
	// A disjunction confined to one table is its own factor and still
	// filters the scan.
	assert.Contains(t, out, "{student.score < 2 OR student.score > 4}")
}

func TestParseBareTableScansWhole(t *testing.T) {
	student := testStudent(t)
	out, err := Parse[string](student, textGen{})
	require.NoError(t, err)
	assert.Equal(t, "student<id,surname,score,school>", out)
}

func TestParseSourceBypass(t *testing.T) {
	student := testStudent(t)
	q, err := dsl.Select(student, column(t, student, "surname"))
	require.NoError(t, err)

	sources := NewSourceMap(map[dsl.Source]string{student: "students_v2"})
	out, err := Parse[string](q, textGen{}, WithSources(sources))
	require.NoError(t, err)
	assert.Equal(t, "SELECT student.surname FROM students_v2", out)
}

func TestParseFeatureBypass(t *testing.T) {
	student := testStudent(t)
	surname := column(t, student, "surname")
	q, err := dsl.Select(student, surname)
	require.NoError(t, err)

	features := NewFeatureMap(map[dsl.Feature]string{surname: "sn"})
	out, err := Parse[string](q, textGen{}, WithFeatures(features))
	require.NoError(t, err)
	assert.Equal(t, "SELECT sn FROM student<surname>", out)
}

func TestParseSelfJoinReferences(t *testing.T) {
	student := testStudent(t)

	left, err := dsl.NewReference(student, "l")
	require.NoError(t, err)
	right, err := dsl.NewReference(student, "r")
	require.NoError(t, err)

	lid, err := dsl.NewElement(left, "school")
	require.NoError(t, err)
	rid, err := dsl.NewElement(right, "id")
	require.NoError(t, err)
	cond, err := dsl.Eq(lid.(dsl.Operable), rid.(dsl.Operable))
	require.NoError(t, err)

	join, err := dsl.NewJoin(left, right, cond, dsl.InnerJoin)
	require.NoError(t, err)
	lname, err := dsl.NewElement(left, "surname")
	require.NoError(t, err)
	rname, err := dsl.NewElement(right, "surname")
	require.NoError(t, err)
	q, err := dsl.Select(join, lname, rname)
	require.NoError(t, err)

	out, err := Parse[string](q, textGen{})
	require.NoError(t, err)
	// The two references resolve to distinct handles over the same table.
	assert.Equal(t,
		"SELECT l.surname, r.surname FROM "+
			"student<id,surname,score,school> AS l INNER JOIN student<id,surname,score,school> AS r "+
			"ON l.school = r.id",
		out)
}

func TestParseBypassedReferenceNeedsFeatures(t *testing.T) {
	student := testStudent(t)
	ref, err := dsl.NewReference(student, "s")
	require.NoError(t, err)
	el, err := dsl.NewElement(ref, "surname")
	require.NoError(t, err)
	q, err := dsl.Select(ref, el)
	require.NoError(t, err)

	// Bypassing the reference skips handle registration, so its elements
	// have no default translation.
	sources := NewSourceMap(map[dsl.Source]string{ref: "precooked"})
	_, err = Parse[string](q, textGen{}, WithSources(sources))
	require.Error(t, err)
	assert.True(t, IsUnprovisioned(err))

	// An explicit feature mapping fills the gap.
	features := NewFeatureMap(map[dsl.Feature]string{el: "precooked.sn"})
	out, err := Parse[string](q, textGen{}, WithSources(sources), WithFeatures(features))
	require.NoError(t, err)
	assert.Equal(t, "SELECT precooked.sn FROM precooked", out)
}

func TestParseSetOperation(t *testing.T) {
	student := testStudent(t)
	twin := testStudent(t)

	set, err := dsl.Union(student, twin)
	require.NoError(t, err)
	out, err := Parse[string](set, textGen{})
	require.NoError(t, err)
	assert.Equal(t,
		"student<id,surname,score,school> UNION student<id,surname,score,school>", out)
}

func TestParseUnsupportedWindow(t *testing.T) {
	student := testStudent(t)

	agg, err := dsl.Sum(column(t, student, "score"))
	require.NoError(t, err)
	win, err := dsl.NewWindow(agg, []dsl.Operable{column(t, student, "school")}, nil)
	require.NoError(t, err)
	q, err := dsl.Select(student, win)
	require.NoError(t, err)

	_, err = Parse[string](q, textGen{})
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
	assert.Contains(t, err.Error(), "window")
}

func TestVisitorFetchOnce(t *testing.T) {
	student := testStudent(t)

	v := New[string](textGen{})
	require.NoError(t, v.Visit(student))
	out, err := v.Fetch()
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = v.Fetch()
	require.Error(t, err)
}

func TestVisitorFetchRequiresSingleSymbol(t *testing.T) {
	student := testStudent(t)

	v := New[string](textGen{})
	require.NoError(t, v.Visit(student))
	require.NoError(t, v.Visit(student))
	_, err := v.Fetch()
	require.Error(t, err)
}

func TestParseGroupedQueryClauseOrder(t *testing.T) {
	student := testStudent(t)
	surname := column(t, student, "surname")

	count, err := dsl.Count(column(t, student, "id"))
	require.NoError(t, err)
	q, err := dsl.Select(student, surname, count)
	require.NoError(t, err)
	q, err = dsl.GroupBy(q, surname)
	require.NoError(t, err)
	min, err := dsl.Gt(count, mustLiteral(t, 1))
	require.NoError(t, err)
	q, err = dsl.Having(q, min)
	require.NoError(t, err)
	q, err = dsl.OrderBy(q, surname, dsl.Descending)
	require.NoError(t, err)
	q, err = dsl.Limit(q, 5, 0)
	require.NoError(t, err)

	out, err := Parse[string](q, textGen{})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT student.surname, count(student.id) FROM student<id,surname> "+
			"GROUP BY student.surname HAVING count(student.id) > 1 "+
			"ORDER BY student.surname DESC LIMIT 5",
		out)
}

func mustLiteral(t *testing.T, v any) *dsl.Literal {
	t.Helper()
	l, err := dsl.NewLiteral(v)
	require.NoError(t, err)
	return l
}

func TestSymbolMapStructuralLookup(t *testing.T) {
	student := testStudent(t)
	twin := testStudent(t)

	sources := NewSourceMap(map[dsl.Source]string{student: "mapped"})
	sym, ok := sources.get(twin)
	require.True(t, ok)
	assert.Equal(t, "mapped", sym)

	var names []string
	for _, f := range student.Schema().Fields() {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"id", "school", "score", "surname"}, names)
}
