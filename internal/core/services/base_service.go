package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/catalog_sync_app/internal/metrics"
	"github.com/SscSPs/catalog_sync_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Logger  *slog.Logger
	Metrics metrics.Metrics
}

// GetLogger gets the logger from context or falls back to the service logger
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	if logger := middleware.LoggerFromCtx(ctx); logger != nil {
		return logger
	}
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// metricsOrNop never returns nil.
func (s *BaseService) metricsOrNop() metrics.Metrics {
	if s.Metrics == nil {
		return metrics.NewNopMetrics()
	}
	return s.Metrics
}
