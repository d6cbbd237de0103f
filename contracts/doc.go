// Package contracts provides the core request and error types for the
// invokit dispatch framework.
//
// This package defines the values that flow between the dispatch engine and
// its interceptors:
//   - InvocationRequest: One call for the engine to make, with its mode,
//     names, and parameters
//   - DispatchMode: How the engine resolves the request to an actual call
//   - Continuation: The callable a Virtual request forwards to
//   - InvocationFault: A dispatch-layer failure, wrapping a sentinel error
//   - Cancellation: An interceptor's veto of a call before it ran
//
// Target method errors are never wrapped by these types; dispatch returns
// them to the caller unchanged.
package contracts
