package pipeline

import (
	"github.com/vuuvv/vrecord/core"
)

func header(names []string, derived []*core.Derived) []string {
	out := make([]string, 0, len(names)+len(derived))
	out = append(out, names...)
	for _, d := range derived {
		out = append(out, d.Name)
	}
	return out
}

// appendLine renders points comma separated in canonical text form followed
// by the derived columns.
func appendLine(dst []byte, points []core.Point, derived []*core.Derived) ([]byte, error) {
	for i, p := range points {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = p.Value.AppendText(dst)
	}
	if len(derived) == 0 {
		return dst, nil
	}
	fields := core.FieldInputs(points)
	for i, d := range derived {
		s, err := d.Evaluate(fields)
		if err != nil {
			return dst, &core.FieldError{Field: d.Name, Err: err}
		}
		if i > 0 || len(points) > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, s...)
	}
	return dst, nil
}
