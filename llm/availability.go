package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BaSui01/schemaflow/types"
)

// AvailabilityChecker reports whether the backing model can serve requests.
// It is consulted once per top-level generation call, before any model
// invocation happens.
type AvailabilityChecker interface {
	Check(ctx context.Context) error
}

// HealthAvailability probes the provider health endpoint. Concurrent probes
// collapse into a single upstream call.
type HealthAvailability struct {
	provider Provider
	group    singleflight.Group
	logger   *zap.Logger
}

// NewHealthAvailability 创建基于 Provider 健康检查的可用性探测器
func NewHealthAvailability(provider Provider, logger *zap.Logger) *HealthAvailability {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthAvailability{
		provider: provider,
		logger:   logger.With(zap.String("component", "availability")),
	}
}

// Check returns nil when the provider is reachable, or an UNAVAILABLE error
// carrying the probe failure.
func (h *HealthAvailability) Check(ctx context.Context) error {
	_, err, shared := h.group.Do("health", func() (any, error) {
		return nil, h.provider.HealthCheck(ctx)
	})
	if err != nil {
		h.logger.Warn("availability probe failed",
			zap.String("provider", h.provider.Name()),
			zap.Bool("shared", shared),
			zap.Error(err))
		return types.NewError(types.ErrUnavailable, fmt.Sprintf("Model unavailable: %v", err)).WithCause(err)
	}
	return nil
}
