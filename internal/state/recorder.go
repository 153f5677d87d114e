package state

import (
	"context"

	"github.com/rev-net/revdash/internal/types"
)

// PostgresRecorder persists refresh results through the global pool.
type PostgresRecorder struct{}

func (PostgresRecorder) RecordSnapshot(ctx context.Context, s NetworkSnapshot) error {
	_, err := SaveNetworkSnapshot(ctx, s)
	return err
}

func (PostgresRecorder) RecordActivity(ctx context.Context, networkName string, items []types.ActivityItem) error {
	_, err := SaveActivity(ctx, networkName, items)
	return err
}

func (PostgresRecorder) RecentSnapshots(ctx context.Context, networkKey string, limit int) ([]NetworkSnapshot, error) {
	return GetRecentSnapshots(ctx, networkKey, limit)
}

func (PostgresRecorder) ActivitySummary(ctx context.Context, networkName string) (*ActivitySummary, error) {
	return GetActivitySummary(ctx, networkName)
}
