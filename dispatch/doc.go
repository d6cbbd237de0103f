// Package dispatch turns invocation requests into actual method calls on a
// service object.
//
// The Engine is the package's entry point. For each request it:
//   - resolves the target according to the request's dispatch mode,
//     validating existence and publication for Concrete requests
//   - runs the before interceptor chain, which may cancel the call
//   - invokes the resolved method or continuation
//   - runs the after chain with the result, then returns that result
//     unchanged
//
// MethodRegistry provides the name-to-method table behind the engine,
// reflected from the service object's exported methods. API narrows which
// of those operations external callers may reach.
//
// Dispatch is synchronous and runs entirely on the caller's goroutine.
// Engines, registries, and APIs are configured before request traffic
// starts and treated as read-only afterwards.
//
// Example usage:
//
//	engine, err := dispatch.NewEngine(calc,
//		dispatch.WithAPI(dispatch.NewPublishedSet("add", "subtract")),
//		dispatch.WithRegistry(reg),
//	)
//	if err != nil {
//		return err
//	}
//
//	req := contracts.NewRequest(contracts.ModeConcrete, "add", "add", []any{1, 2})
//	result, err := engine.Dispatch(ctx, req)
package dispatch
