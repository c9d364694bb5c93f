package rule_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/ierr"
	"github.com/icdevs/inspect-mo-sub000/pkg/rule"
)

type textPayload struct{ Text string }

func textAccessor(p textPayload) string { return p.Text }

func evalText(t *testing.T, r rule.Rule[textPayload], req *ictx.Request, p textPayload) error {
	t.Helper()
	ec := &ictx.EvalContext{Req: req}
	return rule.Evaluate(r, ec, p)
}

func TestTextSize(t *testing.T) {
	min, max := 2, 5
	r := rule.TextSize(textAccessor, &min, &max)
	req := &ictx.Request{}

	assert.NoError(t, evalText(t, r, req, textPayload{Text: "abc"}))

	err := evalText(t, r, req, textPayload{Text: "a"})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindSize))

	err = evalText(t, r, req, textPayload{Text: "way too long"})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindSize))
}

func TestRequireAuthGate(t *testing.T) {
	r := rule.RequireAuth[textPayload]()
	assert.True(t, rule.IsGate[textPayload](r))

	err := evalText(t, r, &ictx.Request{Caller: ictx.AnonymousPrincipal}, textPayload{})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindAuth))

	assert.NoError(t, evalText(t, r, &ictx.Request{Caller: ictx.Principal{ID: "bob"}}, textPayload{}))
}

func TestBlockAllAlwaysBlocked(t *testing.T) {
	r := rule.BlockAll[textPayload]()
	err := evalText(t, r, &ictx.Request{}, textPayload{})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindBlocked))
	assert.Equal(t, "blocked: blocked", err.Error())
}

func TestBlockIngressPhaseSensitive(t *testing.T) {
	r := rule.BlockIngress[textPayload]()
	err := evalText(t, r, &ictx.Request{IsInspect: true}, textPayload{})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindBlocked))

	assert.NoError(t, evalText(t, r, &ictx.Request{IsInspect: false}, textPayload{}))
}

func TestCustomCheckPassesThroughIerr(t *testing.T) {
	wrapped := ierr.NewError(ierr.KindStructure, "probe", "bespoke reason")
	r := rule.CustomCheck(func(_ ictx.CustomCheckArgs, _ textPayload) error {
		return wrapped
	})
	err := evalText(t, r, &ictx.Request{}, textPayload{})
	require.Error(t, err)
	assert.Same(t, wrapped, err)
}

func TestCustomCheckWrapsPlainError(t *testing.T) {
	r := rule.CustomCheck(func(_ ictx.CustomCheckArgs, _ textPayload) error {
		return errors.New("boom")
	})
	err := evalText(t, r, &ictx.Request{}, textPayload{})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindCustom))
}

func TestDynamicAuthIsGate(t *testing.T) {
	r := rule.DynamicAuth[textPayload](func(args ictx.DynamicAuthArgs) error {
		if args.Caller.Anonymous {
			return errors.New("anonymous not allowed")
		}
		return nil
	})
	assert.True(t, rule.IsGate[textPayload](r))

	err := evalText(t, r, &ictx.Request{Caller: ictx.AnonymousPrincipal}, textPayload{})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, ierr.KindAuth))
}

func TestExprCheck(t *testing.T) {
	r, err := rule.NewExprCheck[textPayload]("len(Text) > 3", func(_ ictx.CustomCheckArgs, p textPayload) map[string]interface{} {
		return map[string]interface{}{"Text": p.Text}
	})
	require.NoError(t, err)

	assert.NoError(t, evalText(t, r, &ictx.Request{}, textPayload{Text: "hello"}))

	evalErr := evalText(t, r, &ictx.Request{}, textPayload{Text: "hi"})
	require.Error(t, evalErr)
	assert.True(t, ierr.Is(evalErr, ierr.KindCustom))
}

func TestExprCheckCompileError(t *testing.T) {
	_, err := rule.NewExprCheck[textPayload]("this is not valid expr (((", func(_ ictx.CustomCheckArgs, p textPayload) map[string]interface{} {
		return nil
	})
	require.Error(t, err)
}
