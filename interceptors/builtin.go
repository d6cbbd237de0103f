package interceptors

import (
	"context"
	"log/slog"
	"time"
)

// Built-in interceptors. Register them in both chains to observe an
// invocation on the way in and out; none of them ever cancels.

// LoggingInterceptor logs each invocation passing through the chain.
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor.
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Handler.
func (i *LoggingInterceptor) Intercept(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
	switch inv.Phase {
	case PhaseBefore:
		i.logger.Info("invoking method",
			"requestId", inv.Request.ID(),
			"mode", inv.Request.Mode().String(),
			"methodName", inv.Request.MethodName,
			"argCount", len(inv.Request.Params),
		)
	case PhaseAfter:
		i.logger.Info("method completed",
			"requestId", inv.Request.ID(),
			"methodName", inv.Request.MethodName,
		)
	}
	return Continue(), nil
}

// Name identifies the interceptor in logs.
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}

// TimingInterceptor logs how long a dispatch took, measured from request
// construction to the after phase.
type TimingInterceptor struct {
	logger *slog.Logger
}

// NewTimingInterceptor creates a new timing interceptor.
func NewTimingInterceptor(logger *slog.Logger) *TimingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimingInterceptor{logger: logger}
}

// Intercept implements Handler.
func (i *TimingInterceptor) Intercept(ctx context.Context, service any, inv *Invocation) (Outcome, error) {
	if inv.Phase == PhaseAfter {
		i.logger.Debug("method timing",
			"requestId", inv.Request.ID(),
			"methodName", inv.Request.MethodName,
			"elapsed", time.Since(inv.Request.CreatedAt()),
		)
	}
	return Continue(), nil
}

// Name identifies the interceptor in logs.
func (i *TimingInterceptor) Name() string {
	return "TimingInterceptor"
}
