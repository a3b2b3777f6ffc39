package kind

import "fmt"

// Kind describes a DSL value type.
//
// Kind is a sealed interface - only the primitive singletons and the Array,
// Map and Struct compounds implement it. The marker method pattern prevents
// external implementations and enables exhaustive type switches in backend
// compilers.
type Kind interface {
	// Name returns the kind's canonical spelling, e.g. "integer" or
	// "array<string>".
	Name() string

	// Rank orders the primitive kinds from narrowest to widest. Compound
	// kinds have no rank and return -1.
	Rank() int

	// Cast converts an arbitrary native value into this kind's native
	// representation. Conversion failure returns a *CastError.
	Cast(value any) (any, error)

	// Match reports whether other is exactly this kind. Primitives match by
	// identity, compounds structurally.
	Match(other Kind) bool

	kindNode() // Marker method - seals interface to this package
}

// Primitive ranks. Arithmetic over mixed numeric operands resolves to the
// operand kind with the highest rank.
const (
	rankBoolean = iota
	rankInteger
	rankFloat
	rankDecimal
	rankString
	rankDate
	rankTimestamp
)

// primitive is the shared implementation behind the singleton kinds.
type primitive struct {
	name string
	rank int
	cast func(value any) (any, error)
}

// The primitive singletons. Comparing any two Kind values obtained from
// these variables compares identically regardless of instantiation site.
var (
	Boolean   Kind = &primitive{name: "boolean", rank: rankBoolean, cast: castBoolean}
	Integer   Kind = &primitive{name: "integer", rank: rankInteger, cast: castInteger}
	Float     Kind = &primitive{name: "float", rank: rankFloat, cast: castFloat}
	Decimal   Kind = &primitive{name: "decimal", rank: rankDecimal, cast: castDecimal}
	String    Kind = &primitive{name: "string", rank: rankString, cast: castString}
	Date      Kind = &primitive{name: "date", rank: rankDate, cast: castDate}
	Timestamp Kind = &primitive{name: "timestamp", rank: rankTimestamp, cast: castTimestamp}
)

// primitives lists the singletons in ascending rank order for Reflect.
var primitives = []Kind{Boolean, Integer, Float, Decimal, String, Date, Timestamp}

func (p *primitive) kindNode() {}

func (p *primitive) Name() string { return p.name }

func (p *primitive) Rank() int { return p.rank }

func (p *primitive) String() string { return p.name }

func (p *primitive) Match(other Kind) bool {
	o, ok := other.(*primitive)
	return ok && o == p
}

func (p *primitive) Cast(value any) (any, error) {
	out, err := p.cast(value)
	if err != nil {
		return nil, &CastError{Kind: p, Value: value, Reason: err.Error()}
	}
	return out, nil
}

// Numeric reports whether k participates in arithmetic.
func Numeric(k Kind) bool {
	return k.Match(Integer) || k.Match(Float) || k.Match(Decimal)
}

// Widest returns the highest-ranked of the given primitive kinds.
func Widest(kinds ...Kind) (Kind, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("kind: widest of no kinds")
	}
	out := kinds[0]
	for _, k := range kinds[1:] {
		if k.Rank() < 0 || out.Rank() < 0 {
			return nil, fmt.Errorf("kind: no rank ordering over compound kind %s", k.Name())
		}
		if k.Rank() > out.Rank() {
			out = k
		}
	}
	return out, nil
}

// Ensure verifies other is exactly the kind k and returns it. The frame and
// feature constructors wrap the failure into their grammar error.
func Ensure(k, other Kind) (Kind, error) {
	if !k.Match(other) {
		return nil, fmt.Errorf("kind: %s does not match required %s", other.Name(), k.Name())
	}
	return other, nil
}

// CastError reports a native value that cannot be converted to a kind.
type CastError struct {
	Kind   Kind
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *CastError) Error() string {
	return fmt.Sprintf("kind: cannot cast %v (%T) to %s: %s", e.Value, e.Value, e.Kind.Name(), e.Reason)
}
