package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the dispatch layer. Wrap them in an
// InvocationFault to attach the failing operation and method name.
var (
	// ErrNilRequest indicates Dispatch was handed a nil request.
	ErrNilRequest = errors.New("dispatch: nil invocation request")

	// ErrMethodNotFound indicates the named method does not exist on the
	// service object.
	ErrMethodNotFound = errors.New("dispatch: method not found")

	// ErrMethodNotPublished indicates the method exists but the service
	// API does not expose it to external callers.
	ErrMethodNotPublished = errors.New("dispatch: method not published")

	// ErrBadArguments indicates the supplied arguments do not match the
	// target method's parameters.
	ErrBadArguments = errors.New("dispatch: arguments do not match method signature")

	// ErrBadSignature indicates a registered method's return shape is not
	// one the dispatch layer supports.
	ErrBadSignature = errors.New("dispatch: unsupported method signature")

	// ErrInvalidInterceptor indicates a value registered as an interceptor
	// is not one of the accepted forms.
	ErrInvalidInterceptor = errors.New("interceptors: value is not a valid interceptor")
)

// InvocationFault is a dispatch-layer failure: the framework could not
// carry out the requested operation. It wraps one of the sentinel errors
// above and records where the failure happened. Errors returned by the
// target method itself are never wrapped in an InvocationFault; they pass
// through dispatch unchanged.
type InvocationFault struct {
	// Op names the dispatch stage that failed: "resolve", "call",
	// "register", "intercept".
	Op string

	// Method is the method name involved, when known.
	Method string

	// Err is the underlying sentinel or cause.
	Err error
}

// Error implements the error interface.
func (f *InvocationFault) Error() string {
	if f.Method != "" {
		return fmt.Sprintf("%s %q: %v", f.Op, f.Method, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (f *InvocationFault) Unwrap() error {
	return f.Err
}

// Cancellation reports that an interceptor vetoed an invocation before the
// target method ran. It is a control-flow signal rather than a failure:
// the dispatch engine returns it so callers can distinguish "call refused"
// from "call attempted and failed".
type Cancellation struct {
	// Interceptor is the name of the interceptor that canceled the call.
	Interceptor string

	// Reason is the interceptor-supplied explanation, possibly empty.
	Reason string
}

// Error implements the error interface.
func (c *Cancellation) Error() string {
	if c.Reason != "" {
		return fmt.Sprintf("invocation canceled by %q: %s", c.Interceptor, c.Reason)
	}
	return fmt.Sprintf("invocation canceled by %q", c.Interceptor)
}

// IsCancellation reports whether err is an interceptor cancellation.
func IsCancellation(err error) bool {
	var c *Cancellation
	return errors.As(err, &c)
}

// CancellationReason extracts the reason from a cancellation error. The
// second return is false when err is not a cancellation.
func CancellationReason(err error) (string, bool) {
	var c *Cancellation
	if errors.As(err, &c) {
		return c.Reason, true
	}
	return "", false
}
