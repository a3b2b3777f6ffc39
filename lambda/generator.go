package lambda

import (
	"fmt"
	"sort"
	"strings"

	"github.com/formlio/relq/coltab"
	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/parser"
)

// Generator compiles DSL nodes into closures over the given feed tables.
// The feed map is read-only; a generator may be shared between visitors.
type Generator struct {
	feeds map[string]*coltab.Table
}

var _ parser.Generator[Symbol] = Generator{}

// NewGenerator builds a closure backend over named feed tables.
func NewGenerator(feeds map[string]*coltab.Table) Generator {
	return Generator{feeds: feeds}
}

// Run compiles a source tree and evaluates it against the feeds.
func Run(root dsl.Source, feeds map[string]*coltab.Table, opts ...parser.Option[Symbol]) (*coltab.Table, error) {
	sym, err := parser.Parse[Symbol](root, NewGenerator(feeds), opts...)
	if err != nil {
		return nil, err
	}
	rel, err := asRelation(sym)
	if err != nil {
		return nil, err
	}
	fr, err := rel.run()
	if err != nil {
		return nil, err
	}
	out, err := coltab.New(fr.keys...)
	if err != nil {
		return nil, err
	}
	for r := 0; r < fr.rows; r++ {
		row := make([]coltab.Value, len(fr.keys))
		for i, key := range fr.keys {
			row[i] = fr.cols[key][r]
		}
		if err := out.Append(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FromTable returns a relation serving the given table verbatim, with its
// columns keyed under the given label. It is the bypass counterpart of a
// table scan.
func FromTable(label string, feed *coltab.Table) Symbol {
	return &Relation{label: label, run: func() (*frame, error) {
		fr := newFrame(feed.Rows())
		for _, name := range feed.Names() {
			col, _ := feed.Column(name)
			if err := fr.add(label+"."+name, col); err != nil {
				return nil, err
			}
		}
		return fr, nil
	}}
}

func asRelation(s Symbol) (*Relation, error) {
	rel, ok := s.(*Relation)
	if !ok {
		return nil, fmt.Errorf("expected a relation symbol, got %T", s)
	}
	return rel, nil
}

func asColumnizer(s Symbol) (*Columnizer, error) {
	col, ok := s.(*Columnizer)
	if !ok {
		return nil, fmt.Errorf("expected a feature symbol, got %T", s)
	}
	return col, nil
}

func (g Generator) Table(t *dsl.Table, fields []dsl.Field, filter *Symbol) (Symbol, error) {
	var factor *Columnizer
	if filter != nil {
		col, err := asColumnizer(*filter)
		if err != nil {
			return nil, err
		}
		factor = col
	}
	name := t.Name()
	return &Relation{label: name, run: func() (*frame, error) {
		feed, ok := g.feeds[name]
		if !ok {
			return nil, fmt.Errorf("no feed registered for table %q", name)
		}
		fr := newFrame(feed.Rows())
		for _, f := range fields {
			col, ok := feed.Column(f.Name)
			if !ok {
				return nil, fmt.Errorf("feed %q is missing column %q", name, f.Name)
			}
			if err := fr.add(name+"."+f.Name, col); err != nil {
				return nil, err
			}
		}
		if factor != nil {
			kept, err := filterRows(factor, fr, fr.allRows())
			if err != nil {
				return nil, err
			}
			fr = fr.slice(kept)
		}
		return fr, nil
	}}, nil
}

// filterRows keeps rows for which the predicate evaluates to true.
func filterRows(predicate *Columnizer, fr *frame, rows []int) ([]int, error) {
	var kept []int
	for _, r := range rows {
		v, err := predicate.eval(fr, []int{r})
		if err != nil {
			return nil, err
		}
		truthy, ok := v.AsBool()
		if !ok {
			return nil, fmt.Errorf("predicate produced a non-boolean %v", v.Type)
		}
		if truthy {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func (g Generator) Reference(instance Symbol, name string) (Symbol, Symbol, error) {
	rel, err := asRelation(instance)
	if err != nil {
		return nil, nil, err
	}
	origin := &Relation{label: name, run: func() (*frame, error) {
		fr, err := rel.run()
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(fr.keys))
		for i, key := range fr.keys {
			bare := key
			if j := strings.LastIndexByte(key, '.'); j >= 0 {
				bare = key[j+1:]
			}
			keys[i] = name + "." + bare
		}
		return fr.rekey(keys)
	}}
	return origin, &handle{name: name}, nil
}

func (g Generator) Join(left, right Symbol, condition *Symbol, k dsl.JoinKind) (Symbol, error) {
	lrel, err := asRelation(left)
	if err != nil {
		return nil, err
	}
	rrel, err := asRelation(right)
	if err != nil {
		return nil, err
	}
	var cond *Columnizer
	if condition != nil {
		col, err := asColumnizer(*condition)
		if err != nil {
			return nil, err
		}
		cond = col
	}
	label := fmt.Sprintf("%s %s %s", lrel.label, k, rrel.label)
	return &Relation{label: label, run: func() (*frame, error) {
		lf, err := lrel.run()
		if err != nil {
			return nil, err
		}
		rf, err := rrel.run()
		if err != nil {
			return nil, err
		}
		return joinFrames(lf, rf, cond, k)
	}}, nil
}

// joinFrames materializes a nested-loop join, padding unmatched rows with
// nulls for the outer variants.
func joinFrames(lf, rf *frame, cond *Columnizer, k dsl.JoinKind) (*frame, error) {
	combined := newFrame(0)
	for _, key := range lf.keys {
		if err := combined.add(key, nil); err != nil {
			return nil, err
		}
	}
	for _, key := range rf.keys {
		if err := combined.add(key, nil); err != nil {
			return nil, err
		}
	}

	emit := func(li, ri int) {
		for _, key := range lf.keys {
			v := coltab.Null()
			if li >= 0 {
				v = lf.cols[key][li]
			}
			combined.cols[key] = append(combined.cols[key], v)
		}
		for _, key := range rf.keys {
			v := coltab.Null()
			if ri >= 0 {
				v = rf.cols[key][ri]
			}
			combined.cols[key] = append(combined.cols[key], v)
		}
		combined.rows++
	}

	matchedLeft := make([]bool, lf.rows)
	matchedRight := make([]bool, rf.rows)
	for li := 0; li < lf.rows; li++ {
		for ri := 0; ri < rf.rows; ri++ {
			if cond == nil {
				emit(li, ri)
				continue
			}
			emit(li, ri)
			probe := combined.rows - 1
			v, err := cond.eval(combined, []int{probe})
			if err != nil {
				return nil, err
			}
			truthy, ok := v.AsBool()
			if !ok {
				return nil, fmt.Errorf("join condition produced a non-boolean %v", v.Type)
			}
			if !truthy {
				// Retract the probe row.
				for _, key := range combined.keys {
					combined.cols[key] = combined.cols[key][:probe]
				}
				combined.rows--
				continue
			}
			matchedLeft[li] = true
			matchedRight[ri] = true
		}
	}

	if k == dsl.LeftJoin || k == dsl.FullJoin {
		for li := 0; li < lf.rows; li++ {
			if !matchedLeft[li] {
				emit(li, -1)
			}
		}
	}
	if k == dsl.RightJoin || k == dsl.FullJoin {
		for ri := 0; ri < rf.rows; ri++ {
			if !matchedRight[ri] {
				emit(-1, ri)
			}
		}
	}
	return combined, nil
}

func (g Generator) Set(left, right Symbol, k dsl.SetKind) (Symbol, error) {
	lrel, err := asRelation(left)
	if err != nil {
		return nil, err
	}
	rrel, err := asRelation(right)
	if err != nil {
		return nil, err
	}
	return &Relation{label: fmt.Sprintf("%s %s %s", lrel.label, k, rrel.label),
		run: func() (*frame, error) {
			lf, err := lrel.run()
			if err != nil {
				return nil, err
			}
			rf, err := rrel.run()
			if err != nil {
				return nil, err
			}
			// Right columns align positionally under the left's keys.
			rf, err = rf.rekey(lf.keys)
			if err != nil {
				return nil, err
			}
			return setFrames(lf, rf, k)
		}}, nil
}

// setFrames applies a set operation with SQL distinct semantics.
func setFrames(lf, rf *frame, k dsl.SetKind) (*frame, error) {
	inRight := make(map[string]bool, rf.rows)
	for r := 0; r < rf.rows; r++ {
		inRight[rf.rowKey(r)] = true
	}

	seen := make(map[string]bool)
	var kept []int
	for r := 0; r < lf.rows; r++ {
		key := lf.rowKey(r)
		if seen[key] {
			continue
		}
		switch k {
		case dsl.UnionSet:
		case dsl.IntersectionSet:
			if !inRight[key] {
				continue
			}
		case dsl.DifferenceSet:
			if inRight[key] {
				continue
			}
		default:
			return nil, fmt.Errorf("unknown set kind %v", k)
		}
		seen[key] = true
		kept = append(kept, r)
	}
	out := lf.slice(kept)

	if k == dsl.UnionSet {
		var extra []int
		for r := 0; r < rf.rows; r++ {
			key := rf.rowKey(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			extra = append(extra, r)
		}
		tail := rf.slice(extra)
		for _, key := range out.keys {
			out.cols[key] = append(out.cols[key], tail.cols[key]...)
		}
		out.rows += tail.rows
	}
	return out, nil
}

func (g Generator) Query(source Symbol, features []Symbol, where *Symbol, groupby []Symbol,
	having *Symbol, orderby []Symbol, rows *dsl.Rows) (Symbol, error) {
	rel, err := asRelation(source)
	if err != nil {
		return nil, err
	}
	plan := queryPlan{rows: rows}
	for _, f := range features {
		col, err := asColumnizer(f)
		if err != nil {
			return nil, err
		}
		plan.features = append(plan.features, col)
	}
	if where != nil {
		if plan.where, err = asColumnizer(*where); err != nil {
			return nil, err
		}
	}
	for _, gb := range groupby {
		col, err := asColumnizer(gb)
		if err != nil {
			return nil, err
		}
		plan.groupby = append(plan.groupby, col)
	}
	if having != nil {
		if plan.having, err = asColumnizer(*having); err != nil {
			return nil, err
		}
	}
	for _, ob := range orderby {
		s, ok := ob.(*sorter)
		if !ok {
			return nil, fmt.Errorf("expected an ordering symbol, got %T", ob)
		}
		plan.orderby = append(plan.orderby, s)
	}
	return &Relation{label: "query(" + rel.label + ")", run: func() (*frame, error) {
		fr, err := rel.run()
		if err != nil {
			return nil, err
		}
		return plan.execute(fr)
	}}, nil
}

// queryPlan executes the group/filter/project/order/limit pipeline of one
// compiled query.
type queryPlan struct {
	features []*Columnizer
	where    *Columnizer
	groupby  []*Columnizer
	having   *Columnizer
	orderby  []*sorter
	rows     *dsl.Rows
}

func (p *queryPlan) execute(fr *frame) (*frame, error) {
	selected := fr.allRows()
	if p.where != nil {
		var err error
		if selected, err = filterRows(p.where, fr, selected); err != nil {
			return nil, err
		}
	}

	groups, err := p.group(fr, selected)
	if err != nil {
		return nil, err
	}
	if p.having != nil {
		var kept [][]int
		for _, grp := range groups {
			v, err := p.having.eval(fr, grp)
			if err != nil {
				return nil, err
			}
			truthy, ok := v.AsBool()
			if !ok {
				return nil, fmt.Errorf("postfilter produced a non-boolean %v", v.Type)
			}
			if truthy {
				kept = append(kept, grp)
			}
		}
		groups = kept
	}

	if err := p.order(fr, groups); err != nil {
		return nil, err
	}
	groups = p.limit(groups)

	return p.project(fr, groups)
}

// group partitions the selected rows. Without grouping keys each row forms
// its own unit, unless a cumulative feature collapses the whole selection
// into a single group.
func (p *queryPlan) group(fr *frame, selected []int) ([][]int, error) {
	if len(p.groupby) == 0 {
		for _, f := range p.features {
			if f.cumulative {
				return [][]int{selected}, nil
			}
		}
		groups := make([][]int, len(selected))
		for i, r := range selected {
			groups[i] = []int{r}
		}
		return groups, nil
	}

	index := make(map[string]int)
	var groups [][]int
	for _, r := range selected {
		parts := make([]string, len(p.groupby))
		for i, key := range p.groupby {
			v, err := key.eval(fr, []int{r})
			if err != nil {
				return nil, err
			}
			parts[i] = v.Key()
		}
		key := strings.Join(parts, "\x1f")
		if at, ok := index[key]; ok {
			groups[at] = append(groups[at], r)
		} else {
			index[key] = len(groups)
			groups = append(groups, []int{r})
		}
	}
	return groups, nil
}

func (p *queryPlan) order(fr *frame, groups [][]int) error {
	if len(p.orderby) == 0 {
		return nil
	}
	var failure error
	sort.SliceStable(groups, func(a, b int) bool {
		for _, s := range p.orderby {
			va, err := s.col.eval(fr, groups[a])
			if err != nil {
				failure = err
				return false
			}
			vb, err := s.col.eval(fr, groups[b])
			if err != nil {
				failure = err
				return false
			}
			cmp := va.Compare(vb)
			if cmp == 0 {
				continue
			}
			if s.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return failure
}

func (p *queryPlan) limit(groups [][]int) [][]int {
	if p.rows == nil {
		return groups
	}
	offset := p.rows.Offset
	if offset > len(groups) {
		offset = len(groups)
	}
	end := offset + p.rows.Count
	if end > len(groups) {
		end = len(groups)
	}
	return groups[offset:end]
}

func (p *queryPlan) project(fr *frame, groups [][]int) (*frame, error) {
	out := newFrame(len(groups))
	cells := make([][]coltab.Value, len(p.features))
	for i := range cells {
		cells[i] = make([]coltab.Value, len(groups))
	}
	for gi, grp := range groups {
		for fi, f := range p.features {
			v, err := f.eval(fr, grp)
			if err != nil {
				return nil, err
			}
			cells[fi][gi] = v
		}
	}
	used := make(map[string]bool, len(p.features))
	for fi, f := range p.features {
		key := f.name
		if key == "" {
			key = fmt.Sprintf("c%d", fi)
		}
		// Output names may collide across join sides.
		for base, n := key, fi; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true
		if err := out.add(key, cells[fi]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
