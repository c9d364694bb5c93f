package rule

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
)

// exprCheck is a CustomCheck whose predicate is an expr-lang expression,
// compiled once at registration time rather than on every evaluation.
// This is the one piece of the teacher's named-but-unused expr-lang/expr
// dependency (internal/workflow/engine.go gestures at it for condition
// evaluation and never wires it up) that this edition actually exercises.
type exprCheck[M any] struct {
	src     string
	program *vm.Program
	toEnv   func(ictx.CustomCheckArgs, M) map[string]interface{}
}

// NewExprCheck compiles src as a boolean expr-lang expression and returns
// a CustomCheck rule that evaluates it against the environment toEnv
// builds from the request and payload. Compilation happens once, here;
// evaluate only runs the compiled program, so a malformed expression is
// caught at registration time, not on the hot path.
func NewExprCheck[M any](src string, toEnv func(ictx.CustomCheckArgs, M) map[string]interface{}) (Rule[M], error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rule: compile expr check %q: %w", src, err)
	}
	return exprCheck[M]{src: src, program: program, toEnv: toEnv}, nil
}

func (exprCheck[M]) isGate() bool { return false }
func (exprCheck[M]) kind() string { return "expr_check" }

func (r exprCheck[M]) evaluate(ec *ictx.EvalContext, payload M) error {
	args := ictx.CustomCheckArgs{Req: ec.Req, IsInspect: ec.Req.IsInspect}
	env := r.toEnv(args, payload)

	out, err := expr.Run(r.program, env)
	if err != nil {
		return ierr.WrapError(ierr.KindCustom, r.kind(), err)
	}
	ok, _ := out.(bool)
	if !ok {
		return newErr(ierr.KindCustom, r.kind(), "expression %q evaluated to false", r.src)
	}
	return nil
}
