package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/invokit/invokit-go/contracts"
	"github.com/invokit/invokit-go/interceptors"
)

// Engine resolves invocation requests against one service object and runs
// the configured interceptor chains around each call.
type Engine struct {
	service  any
	methods  *MethodRegistry
	api      API
	registry *interceptors.Registry
	runner   *interceptors.ChainRunner
	logger   *slog.Logger
	onCancel func(reason string)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAPI sets the published-operation surface consulted by Concrete
// requests. Without one, every registered method counts as published.
func WithAPI(api API) EngineOption {
	return func(e *Engine) {
		e.api = api
	}
}

// WithRegistry sets the interceptor registry for the service type.
func WithRegistry(registry *interceptors.Registry) EngineOption {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithMethods replaces the reflected method registry.
func WithMethods(methods *MethodRegistry) EngineOption {
	return func(e *Engine) {
		e.methods = methods
	}
}

// WithEngineLogger sets the logger used for dispatch diagnostics.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOnCancel sets a callback receiving the reason whenever a before
// interceptor cancels a dispatch.
func WithOnCancel(fn func(reason string)) EngineOption {
	return func(e *Engine) {
		e.onCancel = fn
	}
}

// NewEngine creates a dispatch engine for the service object. Unless
// WithMethods supplies one, the method registry is reflected from the
// service's exported methods.
func NewEngine(service any, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		service: service,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.methods == nil {
		methods, err := NewMethodRegistry(service)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %w", err)
		}
		e.methods = methods
	}
	if e.registry == nil {
		e.registry = interceptors.NewRegistry()
	}
	e.runner = interceptors.NewChainRunner(e.registry, interceptors.WithRunnerLogger(e.logger))
	return e, nil
}

// Methods returns the engine's method registry.
func (e *Engine) Methods() *MethodRegistry {
	return e.methods
}

// Registry returns the engine's interceptor registry.
func (e *Engine) Registry() *interceptors.Registry {
	return e.registry
}

// Dispatch resolves the request according to its mode and executes it
// inside the before/after interceptor chains.
//
// Resolution happens first: a Concrete request naming a method that does
// not exist or is not published faults before any interceptor runs. The
// before chain may then cancel the call, in which case Dispatch returns a
// *contracts.Cancellation error and the target is never invoked. Errors
// from the target method propagate unchanged and skip the after chain.
// The after chain observes the result but cannot change what Dispatch
// returns.
func (e *Engine) Dispatch(ctx context.Context, req *contracts.InvocationRequest) (any, error) {
	if req == nil {
		return nil, &contracts.InvocationFault{Op: "dispatch", Err: contracts.ErrNilRequest}
	}

	target, err := e.resolve(req)
	if err != nil {
		return nil, err
	}

	canceled, err := e.runner.Run(ctx, interceptors.PhaseBefore, e.service, e.methods, req, nil)
	if err != nil {
		return nil, err
	}
	if canceled != nil {
		e.logger.Debug("dispatch canceled",
			"requestId", req.ID(),
			"methodName", req.MethodName,
			"interceptor", canceled.Interceptor,
			"reason", canceled.Reason,
		)
		if e.onCancel != nil {
			e.onCancel(canceled.Reason)
		}
		return nil, canceled
	}

	result, err := target(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := e.runner.Run(ctx, interceptors.PhaseAfter, e.service, e.methods, req, result); err != nil {
		return nil, err
	}
	return result, nil
}

// resolve validates the request against its mode and returns the target
// call. Validation happens here so resolution faults surface even when
// the interceptor chains are empty. The returned closure reads the
// request's method name and parameters at call time, after the before
// chain had its chance to rewrite them.
func (e *Engine) resolve(req *contracts.InvocationRequest) (func(context.Context) (any, error), error) {
	switch {
	case req.IsConcrete():
		if !e.methods.Has(req.MethodName) {
			return nil, &contracts.InvocationFault{Op: "resolve", Method: req.MethodName, Err: contracts.ErrMethodNotFound}
		}
		if !e.published(req.MethodName) {
			return nil, &contracts.InvocationFault{Op: "resolve", Method: req.MethodName, Err: contracts.ErrMethodNotPublished}
		}
	case req.IsUnpublishedConcrete():
		// No checks: internal callers may reach unpublished methods.
	default:
		if req.Continuation != nil {
			cont := req.Continuation
			return func(context.Context) (any, error) {
				args := make([]any, 0, len(req.BlockParams)+len(req.Params))
				args = append(args, req.BlockParams...)
				args = append(args, req.Params...)
				return cont(req.PublicMethodName(), args...)
			}, nil
		}
		// Virtual without a continuation degrades to an unchecked call.
	}

	return func(ctx context.Context) (any, error) {
		return e.methods.Call(ctx, req.MethodName, req.Params...)
	}, nil
}

func (e *Engine) published(name string) bool {
	if e.api == nil {
		return true
	}
	return e.api.Published(name)
}
