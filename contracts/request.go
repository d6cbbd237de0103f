package contracts

import (
	"time"

	"github.com/google/uuid"
)

// DispatchMode selects how the dispatch engine resolves an invocation
// request to an actual call.
type DispatchMode int

const (
	// ModeConcrete calls the named method on the service object after
	// confirming the method exists and is published by the service API.
	ModeConcrete DispatchMode = iota

	// ModeVirtual forwards the call to the request's continuation when one
	// is present; otherwise it calls the named method without existence or
	// publication checks.
	ModeVirtual

	// ModeUnpublishedConcrete calls the named method on the service object
	// without existence or publication checks. Used for internally
	// triggered calls that must not be externally discoverable.
	ModeUnpublishedConcrete
)

// String returns the mode name for logging.
func (m DispatchMode) String() string {
	switch m {
	case ModeConcrete:
		return "concrete"
	case ModeVirtual:
		return "virtual"
	case ModeUnpublishedConcrete:
		return "unpublished-concrete"
	default:
		return "unknown"
	}
}

// Continuation is the externally supplied callable a Virtual request is
// forwarded to in place of a same-named service method. It receives the
// request's public method name followed by the block parameters and the
// declared parameters, in that order.
type Continuation func(publicName string, args ...any) (any, error)

// InvocationRequest describes one call for the dispatch engine to make.
//
// A request is transient: it is created for a single dispatch and discarded
// when the call completes, is canceled, or faults. The mode and public
// method name are fixed at construction; the remaining fields belong to the
// dispatch layer and its interceptors, which may rewrite the method name or
// grow the parameter list before the target call happens.
type InvocationRequest struct {
	id         string
	createdAt  time.Time
	mode       DispatchMode
	publicName string

	// MethodName is the underlying method identifier to invoke. The
	// dispatch layer may rewrite it, e.g. to map a public operation name
	// onto an internal one.
	MethodName string

	// Params holds the declared argument values in order. Never nil.
	Params []any

	// BlockParams holds leading arguments injected ahead of Params when a
	// Virtual request is forwarded to its continuation.
	BlockParams []any

	// Continuation, when set on a Virtual request, receives the call in
	// place of a same-named service method.
	Continuation Continuation
}

// RequestOption configures an InvocationRequest at construction.
type RequestOption func(*InvocationRequest)

// WithBlockParams sets the leading arguments injected for Virtual dispatch.
func WithBlockParams(params ...any) RequestOption {
	return func(r *InvocationRequest) {
		r.BlockParams = params
	}
}

// WithContinuation sets the continuation a Virtual request is forwarded to.
func WithContinuation(c Continuation) RequestOption {
	return func(r *InvocationRequest) {
		r.Continuation = c
	}
}

// NewRequest creates an invocation request with a generated ID and the
// current timestamp. A nil params slice becomes an empty one; no other
// validation happens here. Whether the method exists or is published is
// the dispatch engine's concern.
func NewRequest(mode DispatchMode, publicName, methodName string, params []any, opts ...RequestOption) *InvocationRequest {
	if params == nil {
		params = []any{}
	}
	r := &InvocationRequest{
		id:         uuid.New().String(),
		createdAt:  time.Now().UTC(),
		mode:       mode,
		publicName: publicName,
		MethodName: methodName,
		Params:     params,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the request's correlation ID.
func (r *InvocationRequest) ID() string {
	return r.id
}

// CreatedAt returns the request's construction time.
func (r *InvocationRequest) CreatedAt() time.Time {
	return r.createdAt
}

// Mode returns the dispatch mode fixed at construction.
func (r *InvocationRequest) Mode() DispatchMode {
	return r.mode
}

// PublicMethodName returns the operation name as seen by the external
// caller.
func (r *InvocationRequest) PublicMethodName() string {
	return r.publicName
}

// IsConcrete reports whether the request dispatches in Concrete mode.
func (r *InvocationRequest) IsConcrete() bool {
	return r.mode == ModeConcrete
}

// IsUnpublishedConcrete reports whether the request dispatches in
// UnpublishedConcrete mode.
func (r *InvocationRequest) IsUnpublishedConcrete() bool {
	return r.mode == ModeUnpublishedConcrete
}
