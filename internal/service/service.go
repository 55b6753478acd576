package service

import (
	"context"

	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/pkg/metrics"
)

// flush writes one collection snapshot through the gateway and records the
// outcome. A failed flush must fail the whole operation: the caller never
// reports success over stale durable state.
func flush(ctx context.Context, g persist.Gateway, collection string, v any) error {
	err := g.Save(ctx, collection, v)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.SnapshotWritesTotal.WithLabelValues(collection, outcome).Inc()

	return err
}
