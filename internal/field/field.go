package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueName selects which load values a Spec reduces a TickResult to.
type ValueName int

const (
	Sum ValueName = iota
	SumT
	AllLoads
	AllLoadsT
)

// Test is an if_range (or deprecated if_greater) predicate. A nil
// bound is untested, matching the spec's L defaults to -inf, H
// defaults to +inf.
type Test struct {
	Lo, Hi *float64
}

// Matches reports whether value falls in [Lo, Hi), treating a nil
// bound as unbounded on that side.
func (t Test) Matches(value float64) bool {
	if t.Lo != nil && value < *t.Lo {
		return false
	}
	if t.Hi != nil && value >= *t.Hi {
		return false
	}
	return true
}

type formatKind int

const (
	formatFloat formatKind = iota
	formatPercent
	formatTest
)

// Format is the rendering applied to each scalar a Spec produces.
type Format struct {
	kind      formatKind
	precision int
	test      Test
	then, els string
}

// Spec is one parsed field specification: a value selector plus a
// format applied independently to each value it produces.
type Spec struct {
	Value  ValueName
	Format Format
}

// Parse parses one field specification string per the grammar:
//
//	field      := value_expr
//	value_expr := value_name [ ":" format ] | test
//	value_name := "sum" | "sum_t" | "all_loads" | "all_loads_t"
//	format     := "." digits | "%" digits | test
//	test       := "if_range:" [num] ".." [num] ":" then [ ":" else ]
//	            | "if_greater:" num ":" then [ ":" else ]
//
// A bare test with no value_name prefix defaults the value to sum.
func Parse(spec string) (Spec, error) {
	name, rest, hasRest := cut(spec)

	switch name {
	case "":
		return Spec{}, ErrMissingName
	case "sum", "sum_t", "all_loads", "all_loads_t":
		value := map[string]ValueName{
			"sum": Sum, "sum_t": SumT, "all_loads": AllLoads, "all_loads_t": AllLoadsT,
		}[name]
		format := Format{kind: formatFloat, precision: 2}
		if hasRest {
			f, err := parseFormat(rest)
			if err != nil {
				return Spec{}, err
			}
			format = f
		}
		return Spec{Value: value, Format: format}, nil

	case "if_range", "if_greater":
		if !hasRest {
			return Spec{}, ErrMissingTestArgs
		}
		format, err := parseTestFormat(name, rest)
		if err != nil {
			return Spec{}, err
		}
		return Spec{Value: Sum, Format: format}, nil

	default:
		return Spec{}, fmt.Errorf("%w: %q", ErrUnrecognizedName, name)
	}
}

func parseFormat(s string) (Format, error) {
	head, rest, hasRest := cut(s)

	switch head {
	case "if_range", "if_greater":
		if !hasRest {
			return Format{}, ErrMissingTestArgs
		}
		return parseTestFormat(head, rest)
	default:
		if head == "" {
			return Format{}, fmt.Errorf("%w: %q", ErrUnrecognizedFmt, s)
		}
		prefix, digits := head[:1], head[1:]
		precision, err := strconv.Atoi(digits)
		if err != nil {
			return Format{}, fmt.Errorf("%w: %v", ErrBadNumber, err)
		}
		switch prefix {
		case ".":
			return Format{kind: formatFloat, precision: precision}, nil
		case "%":
			return Format{kind: formatPercent, precision: precision}, nil
		default:
			return Format{}, fmt.Errorf("%w: %q", ErrUnrecognizedFmt, s)
		}
	}
}

func parseTestFormat(name, args string) (Format, error) {
	parts := strings.SplitN(args, ":", 3)

	var test Test
	switch name {
	case "if_greater":
		thr, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Format{}, fmt.Errorf("%w: %v", ErrBadNumber, err)
		}
		test = Test{Lo: &thr}
	case "if_range":
		t, err := parseRange(parts[0])
		if err != nil {
			return Format{}, err
		}
		test = t
	}

	if len(parts) < 2 {
		return Format{}, ErrMissingThen
	}
	then := parts[1]
	var els string
	if len(parts) == 3 {
		els = parts[2]
	}
	return Format{kind: formatTest, test: test, then: then, els: els}, nil
}

func parseRange(s string) (Test, error) {
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return Test{}, ErrBadRange
	}
	var t Test
	if lo != "" {
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return Test{}, fmt.Errorf("%w: %v", ErrBadNumber, err)
		}
		t.Lo = &v
	}
	if hi != "" {
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return Test{}, fmt.Errorf("%w: %v", ErrBadNumber, err)
		}
		t.Hi = &v
	}
	return t, nil
}

// cut splits on the first ":" like Rust's splitn(2, ':'): rest is
// empty and hasRest false when no separator is present, distinguishing
// "sum" (no format given) from a spec that happens to end in ":".
func cut(s string) (head, rest string, hasRest bool) {
	head, rest, hasRest = strings.Cut(s, ":")
	return
}

// Render evaluates the spec against one TickResult's loads and the
// logical CPU count, producing the pieces all_loads[_t] expands to
// joined by sep (a single piece for sum/sum_t).
func (s Spec) Render(loads []float64, numCPU int, sep string) string {
	var sum float64
	for _, l := range loads {
		if !math.IsNaN(l) {
			sum += l
		}
	}

	scale := 1.0
	if s.Value == SumT || s.Value == AllLoadsT {
		scale = float64(numCPU)
	}

	var inputs []float64
	switch s.Value {
	case Sum, SumT:
		inputs = []float64{sum / scale}
	case AllLoads, AllLoadsT:
		inputs = make([]float64, len(loads))
		for i, l := range loads {
			v := l
			if math.IsNaN(v) {
				v = 0
			}
			inputs[i] = v / scale
		}
	}

	pieces := make([]string, len(inputs))
	for i, in := range inputs {
		pieces[i] = s.Format.render(in)
	}
	return strings.Join(pieces, sep)
}

func (f Format) render(v float64) string {
	switch f.kind {
	case formatPercent:
		return formatFixed(v*100, f.precision)
	case formatTest:
		if f.test.Matches(v) {
			return f.then
		}
		return f.els
	default:
		return formatFixed(v, f.precision)
	}
}

// formatFixed prints v with exactly precision digits after the decimal
// point, rounding half away from zero.
func formatFixed(v float64, precision int) string {
	neg := v < 0
	av := math.Abs(v)
	factor := math.Pow(10, float64(precision))
	rounded := math.Floor(av*factor+0.5) / factor
	s := strconv.FormatFloat(rounded, 'f', precision, 64)
	if neg && rounded != 0 {
		s = "-" + s
	}
	return s
}
