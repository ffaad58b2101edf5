package core

import (
	"strconv"

	"github.com/google/cel-go/cel"
	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
)

type CelEvaluator struct{ prg cel.Program }

func CompileExpression(expr string) (*CelEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("fields", cel.MapType(cel.StringType, cel.DynType)), // fields为当前记录的所有值
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.WithStack(issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &CelEvaluator{prg: prg}, nil
}

func (e *CelEvaluator) Execute(fields map[string]any) (any, error) {
	out, _, err := e.prg.Eval(map[string]any{"fields": fields})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return out.Value(), nil
}

// Derived is an extra column computed from the decoded fields of a record.
type Derived struct {
	Name    string
	Formula string
	eval    *CelEvaluator
}

func CompileDerived(name string, formula string) (*Derived, error) {
	eval, err := CompileExpression(formula)
	if err != nil {
		return nil, errors.Wrapf(err, "derived field '%s'", name)
	}
	return &Derived{Name: name, Formula: formula, eval: eval}, nil
}

// Evaluate renders the formula result in the same text form as decoded values.
func (d *Derived) Evaluate(fields map[string]any) (string, error) {
	out, err := d.eval.Execute(fields)
	if err != nil {
		return "", errors.Wrapf(err, "derived field '%s'", d.Name)
	}
	switch v := out.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', 3, 32), nil
	}
	s, err := cast.ToStringE(out)
	if err != nil {
		return "", errors.Wrapf(err, "derived field '%s'", d.Name)
	}
	return s, nil
}

// FieldInputs maps point names to native values, first occurrence wins.
func FieldInputs(points []Point) map[string]any {
	fields := make(map[string]any, len(points))
	for _, p := range points {
		if _, ok := fields[p.Name]; !ok {
			fields[p.Name] = p.Value.Native()
		}
	}
	return fields
}
