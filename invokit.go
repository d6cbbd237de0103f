// Package invokit dispatches named operations on service objects through a
// configurable chain of before/after interceptors, any of which may veto
// the call.
package invokit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/invokit/invokit-go/contracts"
	"github.com/invokit/invokit-go/dispatch"
	"github.com/invokit/invokit-go/interceptors"
)

// Endpoint is the main entry point for invokit: one service object, its
// interceptor registry, and the dispatch engine wired together.
type Endpoint struct {
	service  any
	registry *interceptors.Registry
	engine   *dispatch.Engine
	logger   *slog.Logger
}

// NewEndpoint creates an endpoint around the service object. Its exported
// methods become dispatchable operations; WithAPI narrows which of them
// external callers may reach.
func NewEndpoint(service any, options ...EndpointOption) (*Endpoint, error) {
	cfg := &endpointConfig{
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(cfg)
	}

	registry := cfg.registry
	if registry == nil {
		registry = interceptors.NewRegistry()
	}

	engineOpts := []dispatch.EngineOption{
		dispatch.WithRegistry(registry),
		dispatch.WithEngineLogger(cfg.logger),
	}
	if cfg.api != nil {
		engineOpts = append(engineOpts, dispatch.WithAPI(cfg.api))
	}
	if cfg.methods != nil {
		engineOpts = append(engineOpts, dispatch.WithMethods(cfg.methods))
	}
	if cfg.onCancel != nil {
		engineOpts = append(engineOpts, dispatch.WithOnCancel(cfg.onCancel))
	}

	engine, err := dispatch.NewEngine(service, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch engine: %w", err)
	}

	return &Endpoint{
		service:  service,
		registry: registry,
		engine:   engine,
		logger:   cfg.logger,
	}, nil
}

// Dispatch executes one invocation request.
func (e *Endpoint) Dispatch(ctx context.Context, req *contracts.InvocationRequest) (any, error) {
	return e.engine.Dispatch(ctx, req)
}

// Invoke dispatches a Concrete request against the named operation.
func (e *Endpoint) Invoke(ctx context.Context, name string, params ...any) (any, error) {
	req := contracts.NewRequest(contracts.ModeConcrete, name, name, params)
	return e.engine.Dispatch(ctx, req)
}

// Registry returns the interceptor registry for configuration.
func (e *Endpoint) Registry() *interceptors.Registry {
	return e.registry
}

// Methods returns the method registry behind the endpoint.
func (e *Endpoint) Methods() *dispatch.MethodRegistry {
	return e.engine.Methods()
}

// Engine returns the underlying dispatch engine.
func (e *Endpoint) Engine() *dispatch.Engine {
	return e.engine
}

// Service returns the service object.
func (e *Endpoint) Service() any {
	return e.service
}

// endpointConfig holds endpoint configuration
type endpointConfig struct {
	logger   *slog.Logger
	api      dispatch.API
	registry *interceptors.Registry
	methods  *dispatch.MethodRegistry
	onCancel func(reason string)
}

// EndpointOption configures the endpoint
type EndpointOption func(*endpointConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) EndpointOption {
	return func(cfg *endpointConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithAPI sets the published-operation surface consulted by Concrete
// dispatches
func WithAPI(api dispatch.API) EndpointOption {
	return func(cfg *endpointConfig) {
		cfg.api = api
	}
}

// WithRegistry supplies a pre-built interceptor registry, e.g. one
// extended from a parent service type
func WithRegistry(registry *interceptors.Registry) EndpointOption {
	return func(cfg *endpointConfig) {
		cfg.registry = registry
	}
}

// WithMethods replaces the reflected method registry
func WithMethods(methods *dispatch.MethodRegistry) EndpointOption {
	return func(cfg *endpointConfig) {
		cfg.methods = methods
	}
}

// WithOnCancel sets the callback receiving cancellation reasons
func WithOnCancel(fn func(reason string)) EndpointOption {
	return func(cfg *endpointConfig) {
		cfg.onCancel = fn
	}
}
