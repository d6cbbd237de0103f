// Package interceptors provides the before/after interception pipeline for
// service-object invocations.
//
// Interceptors are cross-cutting units of logic that run around a method
// call without modifying the service itself. This package provides:
//   - Registry: per-service-type configuration of ordered before/after
//     chains with per-interceptor Only/Except method filters
//   - ChainRunner: runtime execution of one phase's chain for a request
//   - Three interceptor forms: NamedMethod (a method on the service),
//     Callable (a standalone function), and Handle (a handler object)
//   - Built-in LoggingInterceptor and TimingInterceptor
//
// A before interceptor may cancel the invocation by returning
// Cancel(reason); the chain stops at the first veto and the target method
// is never called. The after phase is observational only: cancel outcomes
// there are ignored and the already-computed result is returned unchanged.
//
// Example usage:
//
//	reg := interceptors.NewRegistry()
//
//	// A named method on the service object guards withdrawals.
//	err := reg.AppendBefore([]any{"checkBalance"}, interceptors.Only("withdraw"))
//
//	// A function observes every completed call.
//	err = reg.AppendAfter([]any{interceptors.Callable("audit", auditFn)})
//
// Registries are configured during service-type setup, before any request
// is dispatched. Subtypes extend a parent's configuration with a deep copy:
//
//	child := parent.Extend()
//	err := child.AppendBefore([]any{"extraCheck"})
//
// Custom handler objects implement the Handler interface:
//
//	type Auditor struct{ log *slog.Logger }
//
//	func (a *Auditor) Intercept(ctx context.Context, service any, inv *interceptors.Invocation) (interceptors.Outcome, error) {
//		a.log.Info("observed", "methodName", inv.Request.MethodName)
//		return interceptors.Continue(), nil
//	}
package interceptors
