package interceptors

import (
	"context"
	"errors"
	"testing"

	"github.com/invokit/invokit-go/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func recording(name string, order *[]string, outcome Outcome) Interceptor {
	return Callable(name, func(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
		*order = append(*order, name)
		return outcome, nil
	})
}

func TestChainRunnerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("runs before interceptors in registration order", func(t *testing.T) {
		var order []string
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{recording("second", &order, Continue())}))
		require.NoError(t, reg.AppendBefore([]any{recording("third", &order, Continue())}))
		require.NoError(t, reg.PrependBefore([]any{recording("first", &order, Continue())}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", []any{1})
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.NoError(t, err)
		assert.Nil(t, canceled)
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("the first cancel stops the before chain", func(t *testing.T) {
		var order []string
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{
			recording("gate", &order, Cancel("denied")),
			recording("late", &order, Continue()),
		}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", nil)
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.NoError(t, err)
		require.NotNil(t, canceled)
		assert.Equal(t, "gate", canceled.Interceptor)
		assert.Equal(t, "denied", canceled.Reason)
		assert.Equal(t, []string{"gate"}, order)
	})

	t.Run("skips interceptors filtered out for the method", func(t *testing.T) {
		var order []string
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{recording("scoped", &order, Cancel("never"))}, Only("add")))
		require.NoError(t, reg.AppendBefore([]any{recording("always", &order, Continue())}))

		req := contracts.NewRequest(contracts.ModeConcrete, "subtract", "subtract", nil)
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.NoError(t, err)
		assert.Nil(t, canceled)
		assert.Equal(t, []string{"always"}, order)
	})

	t.Run("skips when the resolved name falls outside an only filter", func(t *testing.T) {
		var order []string
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{recording("scoped", &order, Continue())}, Only("add")))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "internalAdd", nil)
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.NoError(t, err)
		assert.Nil(t, canceled)
		assert.Empty(t, order)
	})

	t.Run("the after phase ignores cancel outcomes and keeps running", func(t *testing.T) {
		var order []string
		reg := NewRegistry()
		require.NoError(t, reg.AppendAfter([]any{
			recording("veto", &order, Cancel("too late")),
			recording("tail", &order, Continue()),
		}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", nil)
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseAfter, nil, nil, req, 42)

		require.NoError(t, err)
		assert.Nil(t, canceled)
		assert.Equal(t, []string{"veto", "tail"}, order)
	})

	t.Run("after interceptors see the target result", func(t *testing.T) {
		var got any
		reg := NewRegistry()
		require.NoError(t, reg.AppendAfter([]any{
			Callable("observe", func(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
				got = inv.Result
				return Continue(), nil
			}),
		}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", nil)
		_, err := NewChainRunner(reg).Run(ctx, PhaseAfter, nil, nil, req, 42)

		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("interceptor errors abort the chain", func(t *testing.T) {
		boom := errors.New("boom")
		var order []string
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{
			Callable("bad", func(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
				return Outcome{}, boom
			}),
			recording("late", &order, Continue()),
		}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", nil)
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), `"bad"`)
		assert.Nil(t, canceled)
		assert.Empty(t, order)
	})

	t.Run("named methods go through the method caller", func(t *testing.T) {
		caller := &mockCaller{}
		caller.On("Has", "check").Return(true)
		caller.On("Call", mock.Anything, "check", []any{"add", []any{1, 2}}).Return([]any{false, "denied"}, nil)

		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{"check"}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", []any{1, 2})
		canceled, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, caller, req, nil)

		require.NoError(t, err)
		require.NotNil(t, canceled)
		assert.Equal(t, "check", canceled.Interceptor)
		assert.Equal(t, "denied", canceled.Reason)
		caller.AssertExpectations(t)
	})

	t.Run("request rewrites are visible to later interceptors", func(t *testing.T) {
		var got []any
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{
			Callable("rewrite", func(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
				inv.Request.Params = append(inv.Request.Params, "extra")
				return Continue(), nil
			}),
			Callable("observe", func(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
				got = append([]any(nil), inv.Request.Params...)
				return Continue(), nil
			}),
		}))

		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", []any{1})
		_, err := NewChainRunner(reg).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.NoError(t, err)
		assert.Equal(t, []any{1, "extra"}, got)
		assert.Equal(t, []any{1, "extra"}, req.Params)
	})

	t.Run("passes the service object to handlers", func(t *testing.T) {
		h := newRecordingHandler("audit")
		reg := NewRegistry()
		require.NoError(t, reg.AppendBefore([]any{h}))

		svc := &struct{ name string }{name: "calc"}
		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", nil)
		_, err := NewChainRunner(reg).Run(ctx, PhaseBefore, svc, nil, req, nil)

		require.NoError(t, err)
		assert.Equal(t, []any{any(svc)}, h.services)
	})

	t.Run("an empty chain succeeds without work", func(t *testing.T) {
		req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", nil)

		canceled, err := NewChainRunner(nil).Run(ctx, PhaseBefore, nil, nil, req, nil)

		require.NoError(t, err)
		assert.Nil(t, canceled)
	})
}

func TestNewChainRunner(t *testing.T) {
	t.Run("defaults a nil registry to an empty one", func(t *testing.T) {
		runner := NewChainRunner(nil)

		require.NotNil(t, runner.Registry())
		assert.Empty(t, runner.Registry().BeforeChain())
	})

	t.Run("keeps the supplied registry", func(t *testing.T) {
		reg := NewRegistry()
		runner := NewChainRunner(reg)

		assert.Same(t, reg, runner.Registry())
	})
}
