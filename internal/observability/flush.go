package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry drains telemetry buffers during shutdown, after in-flight
// requests finish and before the Influx writer closes. Prometheus is
// pull-based so metrics need no flush; this syncs the zap buffer.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
