package sqltext

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
	"github.com/formlio/relq/parser"
)

func testStudent(t *testing.T) *dsl.Table {
	t.Helper()
	student, err := dsl.NewTable("student",
		dsl.NewField(kind.Integer, "id"),
		dsl.NewField(kind.String, "surname"),
		dsl.NewField(kind.Float, "score"),
		dsl.NewField(kind.Integer, "class"),
		dsl.NewField(kind.Integer, "school"),
		dsl.NewField(kind.Date, "birthday"),
	)
	require.NoError(t, err)
	return student
}

func testSchool(t *testing.T) *dsl.Table {
	t.Helper()
	school, err := dsl.NewTable("school",
		dsl.NewField(kind.Integer, "id"),
		dsl.NewField(kind.String, "name"),
	)
	require.NoError(t, err)
	return school
}

func column(t *testing.T, table *dsl.Table, name string) *dsl.Column {
	t.Helper()
	c, err := table.Column(name)
	require.NoError(t, err)
	return c
}

func literal(t *testing.T, value any) *dsl.Literal {
	t.Helper()
	l, err := dsl.NewLiteral(value)
	require.NoError(t, err)
	return l
}

func TestCompileRankingScenario(t *testing.T) {
	student := testStudent(t)
	school := testSchool(t)

	joined, err := dsl.Eq(column(t, school, "id"), column(t, student, "school"))
	require.NoError(t, err)
	src, err := dsl.NewJoin(student, school, joined, dsl.InnerJoin)
	require.NoError(t, err)

	count, err := dsl.Count(column(t, school, "name"))
	require.NoError(t, err)
	surname, err := dsl.Alias(column(t, student, "surname"), "student")
	require.NoError(t, err)
	num, err := dsl.Alias(count, "num")
	require.NoError(t, err)

	q, err := dsl.Select(src, surname, num)
	require.NoError(t, err)
	low, err := dsl.Lt(column(t, student, "score"), literal(t, 2))
	require.NoError(t, err)
	q, err = dsl.Where(q, low)
	require.NoError(t, err)
	q, err = dsl.GroupBy(q, column(t, student, "surname"))
	require.NoError(t, err)
	min, err := dsl.Gt(count, literal(t, 1))
	require.NoError(t, err)
	q, err = dsl.Having(q, min)
	require.NoError(t, err)
	q, err = dsl.OrderBy(q, column(t, student, "class"), column(t, student, "score"), dsl.Descending)
	require.NoError(t, err)
	q, err = dsl.Limit(q, 10, 0)
	require.NoError(t, err)

	out, err := Compile(q)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "student"."surname" AS "student", count("school"."name") AS "num"`+
			` FROM "student" JOIN "school" ON "school"."id" = "student"."school"`+
			` WHERE "student"."score" < 2 GROUP BY "student"."surname"`+
			` HAVING count("school"."name") > 1`+
			` ORDER BY "student"."class" ASC, "student"."score" DESC LIMIT 10`,
		out)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "ranking", []byte(out))
}

func TestCompileSelfJoin(t *testing.T) {
	student := testStudent(t)

	left, err := dsl.NewReference(student, "l")
	require.NoError(t, err)
	right, err := dsl.NewReference(student, "r")
	require.NoError(t, err)

	lschool, err := dsl.NewElement(left, "school")
	require.NoError(t, err)
	rid, err := dsl.NewElement(right, "id")
	require.NoError(t, err)
	cond, err := dsl.Eq(lschool.(dsl.Operable), rid.(dsl.Operable))
	require.NoError(t, err)

	join, err := dsl.NewJoin(left, right, cond, dsl.InnerJoin)
	require.NoError(t, err)
	lname, err := dsl.NewElement(left, "surname")
	require.NoError(t, err)
	rname, err := dsl.NewElement(right, "surname")
	require.NoError(t, err)
	q, err := dsl.Select(join, lname, rname)
	require.NoError(t, err)

	out, err := Compile(q)
	require.NoError(t, err)
	// The two references to the same table render as distinct aliases.
	assert.Equal(t,
		`SELECT "l"."surname", "r"."surname"`+
			` FROM "student" AS "l" JOIN "student" AS "r" ON "l"."school" = "r"."id"`,
		out)
}

func TestCompileSubquerySource(t *testing.T) {
	student := testStudent(t)

	inner, err := dsl.Select(student, column(t, student, "surname"))
	require.NoError(t, err)
	ref, err := dsl.NewReference(inner, "sub")
	require.NoError(t, err)
	el, err := dsl.NewElement(ref, "surname")
	require.NoError(t, err)
	outer, err := dsl.Select(ref, el)
	require.NoError(t, err)

	out, err := Compile(outer)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "sub"."surname" FROM (SELECT "student"."surname" FROM "student") AS "sub"`,
		out)
}

func TestCompileJoinKinds(t *testing.T) {
	student := testStudent(t)
	school := testSchool(t)
	cond, err := dsl.Eq(column(t, school, "id"), column(t, student, "school"))
	require.NoError(t, err)

	for _, tt := range []struct {
		kind dsl.JoinKind
		want string
	}{
		{dsl.InnerJoin, `"student" JOIN "school" ON "school"."id" = "student"."school"`},
		{dsl.LeftJoin, `"student" LEFT JOIN "school" ON "school"."id" = "student"."school"`},
		{dsl.RightJoin, `"student" RIGHT JOIN "school" ON "school"."id" = "student"."school"`},
		{dsl.FullJoin, `"student" FULL JOIN "school" ON "school"."id" = "student"."school"`},
	} {
		t.Run(tt.kind.String(), func(t *testing.T) {
			var condition dsl.Predicate = cond
			join, err := dsl.NewJoin(student, school, condition, tt.kind)
			require.NoError(t, err)
			out, err := Compile(join)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	cross, err := dsl.NewJoin(student, school, nil, dsl.CrossJoin)
	require.NoError(t, err)
	out, err := Compile(cross)
	require.NoError(t, err)
	assert.Equal(t, `"student" CROSS JOIN "school"`, out)
}

func TestCompileSetKinds(t *testing.T) {
	student := testStudent(t)
	twin := testStudent(t)

	for _, tt := range []struct {
		build func(l, r dsl.Source) (*dsl.Set, error)
		want  string
	}{
		{dsl.Union, `"student" UNION "student"`},
		{dsl.Intersection, `"student" INTERSECT "student"`},
		{dsl.Difference, `"student" EXCEPT "student"`},
	} {
		set, err := tt.build(student, twin)
		require.NoError(t, err)
		out, err := Compile(set)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out)
	}
}

func TestCompileLimitOffset(t *testing.T) {
	student := testStudent(t)

	q, err := dsl.Limit(student, 10, 5)
	require.NoError(t, err)
	out, err := Compile(q)
	require.NoError(t, err)
	assert.Contains(t, out, "LIMIT 5, 10")

	q, err = dsl.Limit(student, 10, 0)
	require.NoError(t, err)
	out, err = Compile(q)
	require.NoError(t, err)
	// A zero offset is omitted entirely.
	assert.Contains(t, out, "LIMIT 10")
	assert.NotContains(t, out, "LIMIT 0")
}

func TestCompileCompoundPredicate(t *testing.T) {
	student := testStudent(t)
	score := column(t, student, "score")

	low, err := dsl.Lt(score, literal(t, 2))
	require.NoError(t, err)
	high, err := dsl.Gt(score, literal(t, 0))
	require.NoError(t, err)
	both, err := dsl.And(low, high)
	require.NoError(t, err)

	q, err := dsl.Where(student, both)
	require.NoError(t, err)
	out, err := Compile(q)
	require.NoError(t, err)
	assert.Contains(t, out,
		`WHERE ("student"."score" < 2) AND ("student"."score" > 0)`)
}

func TestCompileCastAndFunctions(t *testing.T) {
	student := testStudent(t)

	cast, err := dsl.NewCast(column(t, student, "class"), kind.String)
	require.NoError(t, err)
	year, err := dsl.NewYear(column(t, student, "birthday"))
	require.NoError(t, err)
	q, err := dsl.Select(student, cast, year)
	require.NoError(t, err)

	out, err := Compile(q)
	require.NoError(t, err)
	assert.Contains(t, out, `CAST("student"."class" AS VARCHAR)`)
	assert.Contains(t, out, `EXTRACT(YEAR FROM "student"."birthday")`)
}

func TestCompileWindow(t *testing.T) {
	student := testStudent(t)

	agg, err := dsl.Avg(column(t, student, "score"))
	require.NoError(t, err)
	win, err := dsl.NewWindow(agg, []dsl.Operable{column(t, student, "class")},
		[]dsl.Ordering{{Feature: column(t, student, "score"), Direction: dsl.Descending}})
	require.NoError(t, err)
	q, err := dsl.Select(student, win)
	require.NoError(t, err)

	out, err := Compile(q)
	require.NoError(t, err)
	assert.Contains(t, out,
		`avg("student"."score") OVER (PARTITION BY "student"."class" ORDER BY "student"."score" DESC)`)
}

func TestCompileSourceBypass(t *testing.T) {
	student := testStudent(t)
	q, err := dsl.Select(student, column(t, student, "surname"))
	require.NoError(t, err)

	sources := parser.NewSourceMap(map[dsl.Source]string{student: `"students_v2"`})
	out, err := Compile(q, parser.WithSources(sources))
	require.NoError(t, err)
	assert.Equal(t, `SELECT "student"."surname" FROM "students_v2"`, out)
}

func TestLiteralEncoding(t *testing.T) {
	g := Generator{}

	for _, tt := range []struct {
		name  string
		value any
		kind  kind.Kind
		want  string
	}{
		{"integer", int64(42), kind.Integer, "42"},
		{"float", 2.5, kind.Float, "2.5"},
		{"string", "O'Neil", kind.String, "'O''Neil'"},
		{"boolean", true, kind.Boolean, "TRUE"},
		{"decimal", apd.New(314, -2), kind.Decimal, "3.14"},
		{"date", time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), kind.Date, "DATE '2020-05-01'"},
		{"timestamp", time.Date(2020, 5, 1, 10, 30, 0, 0, time.UTC), kind.Timestamp,
			"TIMESTAMP '2020-05-01 10:30:00'"},
		{"timestamp-frac", time.Date(2020, 5, 1, 10, 30, 0, 42000, time.UTC), kind.Timestamp,
			"TIMESTAMP '2020-05-01 10:30:00.000042'"},
		{"array", []any{int64(1), int64(2)}, kind.Array{Element: kind.Integer}, "ARRAY[1, 2]"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Literal(tt.value, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := g.Literal(map[string]any{}, kind.Map{Key: kind.String, Value: kind.Integer})
	require.Error(t, err)
	assert.True(t, parser.IsUnsupported(err))
}
