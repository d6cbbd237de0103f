package interceptors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/invokit/invokit-go/contracts"
)

// MethodCaller resolves and calls methods on the service object by name.
// The dispatch layer's method registry satisfies it.
type MethodCaller interface {
	// Has reports whether the named method exists.
	Has(name string) bool

	// Call invokes the named method with the given arguments.
	Call(ctx context.Context, name string, args ...any) (any, error)
}

// ChainRunner executes a registry's interceptor chains around an invocation.
type ChainRunner struct {
	registry *Registry
	logger   *slog.Logger
}

// RunnerOption configures a ChainRunner.
type RunnerOption func(*ChainRunner)

// WithRunnerLogger sets the logger used for chain diagnostics.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *ChainRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewChainRunner creates a runner over the given registry. A nil registry
// behaves as an empty one.
func NewChainRunner(registry *Registry, opts ...RunnerOption) *ChainRunner {
	if registry == nil {
		registry = NewRegistry()
	}
	r := &ChainRunner{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the runner executes.
func (r *ChainRunner) Registry() *Registry {
	return r.registry
}

// Run executes one phase's chain for the request, in registration order,
// skipping interceptors whose filters exclude the request's public or
// resolved method name. Interceptors share a single Invocation value, so
// request rewrites made by one are seen by the next.
//
// In the before phase the first cancel outcome stops the chain and is
// returned as a Cancellation. The after phase is not cancelable: a cancel
// outcome there has no effect and the chain runs to the end. A nil
// Cancellation means the phase completed without a veto. Errors from
// interceptors abort the chain immediately.
func (r *ChainRunner) Run(ctx context.Context, phase Phase, service any, caller MethodCaller, req *contracts.InvocationRequest, result any) (*contracts.Cancellation, error) {
	chain := r.registry.before
	if phase == PhaseAfter {
		chain = r.registry.after
	}
	if len(chain) == 0 {
		return nil, nil
	}

	inv := &Invocation{Phase: phase, Request: req, Result: result}
	for _, in := range chain {
		if !r.registry.Applicable(in, req.PublicMethodName(), req.MethodName) {
			r.logger.Debug("skipping interceptor",
				"interceptor", in.Name(),
				"phase", phase.String(),
				"methodName", req.MethodName,
			)
			continue
		}

		outcome, err := in.invoke(ctx, service, caller, inv)
		if err != nil {
			return nil, fmt.Errorf("interceptor %q: %w", in.Name(), err)
		}
		if outcome.Proceed {
			continue
		}
		if phase == PhaseAfter {
			r.logger.Debug("ignoring cancel outcome in after phase",
				"interceptor", in.Name(),
				"methodName", req.MethodName,
			)
			continue
		}

		r.logger.Debug("invocation canceled",
			"interceptor", in.Name(),
			"methodName", req.MethodName,
			"reason", outcome.Reason,
		)
		return &contracts.Cancellation{Interceptor: in.Name(), Reason: outcome.Reason}, nil
	}
	return nil, nil
}
