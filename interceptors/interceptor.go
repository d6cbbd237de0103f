package interceptors

import (
	"context"
	"fmt"

	"github.com/invokit/invokit-go/contracts"
)

// Phase identifies the point in the call lifecycle at which an interceptor runs.
type Phase int

const (
	// PhaseBefore runs ahead of the target call and may cancel it.
	PhaseBefore Phase = iota
	// PhaseAfter runs after the target call completed successfully.
	PhaseAfter
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Outcome is a single interceptor's verdict on the current invocation.
type Outcome struct {
	// Proceed is false when the interceptor cancels the invocation.
	Proceed bool

	// Reason optionally explains a cancellation.
	Reason string
}

// Continue returns an outcome that lets the invocation proceed.
func Continue() Outcome {
	return Outcome{Proceed: true}
}

// Cancel returns an outcome that vetoes the invocation.
func Cancel(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Invocation is the view of the current dispatch handed to interceptors.
// The request is shared with the dispatch engine: rewriting
// Request.MethodName or growing Request.Params changes what the engine
// calls. Result carries the target's return value in the after phase and
// is nil before.
type Invocation struct {
	Phase   Phase
	Request *contracts.InvocationRequest
	Result  any
}

// Func is the function form of an interceptor. It receives the service
// object the dispatch targets and the current invocation.
type Func func(ctx context.Context, service any, inv *Invocation) (Outcome, error)

// Handler is the object form of an interceptor, for cross-cutting logic
// that lives outside the service object.
type Handler interface {
	Intercept(ctx context.Context, service any, inv *Invocation) (Outcome, error)
}

// Interceptor is a registered unit of before/after logic. The three
// implementations are built by NamedMethod, Callable, and Handle; Ref
// resolves loose references to one of them at registration time.
//
// Interceptor values are the identity keys for applicability filters: two
// NamedMethod references to the same method name share one filter slot,
// while every Callable call creates a distinct slot. Handlers are keyed by
// the handler value itself and should be pointer types.
type Interceptor interface {
	// Name identifies the interceptor in logs.
	Name() string

	invoke(ctx context.Context, service any, caller MethodCaller, inv *Invocation) (Outcome, error)
}

// Ref resolves a loose interceptor reference to its registered form: an
// Interceptor passes through, a string becomes a NamedMethod, a function
// with the Func signature becomes a Callable, and a Handler is wrapped by
// Handle. Any other value is a configuration fault.
func Ref(v any) (Interceptor, error) {
	switch ref := v.(type) {
	case Interceptor:
		return ref, nil
	case string:
		return NamedMethod(ref), nil
	case Func:
		return Callable("callable", ref), nil
	case func(context.Context, any, *Invocation) (Outcome, error):
		return Callable("callable", ref), nil
	case Handler:
		return Handle(ref), nil
	default:
		return nil, fmt.Errorf("cannot register %T as an interceptor: %w", v, contracts.ErrInvalidInterceptor)
	}
}

// namedMethod resolves to a method on the service object at call time.
type namedMethod struct {
	method string
}

// NamedMethod references an interceptor implemented as a method on the
// service object itself. At run time the method receives the invoked
// method name and the parameter slice, plus the result in the after
// phase. Its return value is read by the pair protocol: a two-element
// slice is (outcome, reason), anything else is the outcome itself, and
// only an exact false cancels.
func NamedMethod(method string) Interceptor {
	return namedMethod{method: method}
}

// Name implements Interceptor.
func (n namedMethod) Name() string {
	return n.method
}

func (n namedMethod) invoke(ctx context.Context, service any, caller MethodCaller, inv *Invocation) (Outcome, error) {
	if caller == nil || !caller.Has(n.method) {
		return Outcome{}, &contracts.InvocationFault{Op: "intercept", Method: n.method, Err: contracts.ErrMethodNotFound}
	}

	args := []any{inv.Request.MethodName, inv.Request.Params}
	if inv.Phase == PhaseAfter {
		args = append(args, inv.Result)
	}

	ret, err := caller.Call(ctx, n.method, args...)
	if err != nil {
		return Outcome{}, err
	}
	return interpret(ret), nil
}

// callable wraps a standalone function.
type callable struct {
	name string
	fn   Func
}

// Callable wraps fn as an interceptor under the given name.
func Callable(name string, fn Func) Interceptor {
	return &callable{name: name, fn: fn}
}

// Name implements Interceptor.
func (c *callable) Name() string {
	return c.name
}

func (c *callable) invoke(ctx context.Context, service any, _ MethodCaller, inv *Invocation) (Outcome, error) {
	return c.fn(ctx, service, inv)
}

// handlerRef wraps a Handler object.
type handlerRef struct {
	h Handler
}

// Handle wraps a handler object as an interceptor.
func Handle(h Handler) Interceptor {
	return handlerRef{h: h}
}

// Name implements Interceptor. Handlers may provide their own name by
// exposing a Name() string method.
func (h handlerRef) Name() string {
	if n, ok := h.h.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", h.h)
}

func (h handlerRef) invoke(ctx context.Context, service any, _ MethodCaller, inv *Invocation) (Outcome, error) {
	return h.h.Intercept(ctx, service, inv)
}

// interpret maps a named method's raw return value onto an Outcome. A
// two-element slice is read as (outcome, reason); any other value is the
// outcome itself. Only an outcome of exactly false cancels.
func interpret(ret any) Outcome {
	switch out := ret.(type) {
	case Outcome:
		return out
	case *Outcome:
		if out != nil {
			return *out
		}
	case bool:
		return Outcome{Proceed: out}
	case []any:
		if len(out) == 2 {
			proceed, ok := out[0].(bool)
			if !ok {
				return Continue()
			}
			reason, _ := out[1].(string)
			return Outcome{Proceed: proceed, Reason: reason}
		}
	}
	return Continue()
}
