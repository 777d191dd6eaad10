package field

import "strings"

// Line joins the output of several Specs with sep, implementing
// client.Formatter: one Format call per tick produces one output line.
type Line struct {
	Specs []Spec
	Sep   string
}

// Format renders every spec against loads and numCPU and joins the
// results with the line's separator. It never returns a non-nil error;
// the return signature matches client.Formatter so field specs can be
// parsed and validated once, up front, with parse errors surfaced
// before any sampling begins.
func (l Line) Format(loads []float64, numCPU int) (string, error) {
	pieces := make([]string, len(l.Specs))
	for i, s := range l.Specs {
		pieces[i] = s.Render(loads, numCPU, l.Sep)
	}
	return strings.Join(pieces, l.Sep), nil
}
