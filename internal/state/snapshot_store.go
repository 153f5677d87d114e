// ./internal/state/snapshot_store.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/lib/pq" // PostgreSQL driver for array support
	"github.com/rs/zerolog/log"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

// NetworkSnapshot is one refresh of a network's treasury and schedule position.
type NetworkSnapshot struct {
	SnapshotID       int64              `json:"snapshot_id"`
	NetworkKey       string             `json:"network_key"`
	NetworkName      string             `json:"network_name"`
	ChainID          int64              `json:"chain_id"`
	ProjectID        uint64             `json:"project_id"`
	Timestamp        time.Time          `json:"timestamp"`
	Treasury         types.Treasury     `json:"treasury"`
	ExitFloor        *fixedpoint.Amount `json:"exit_floor,omitempty"` // nil while nothing is outstanding
	ActiveStage      *int               `json:"active_stage,omitempty"`
	NextTransition   *time.Time         `json:"next_transition,omitempty"`
	ParticipantCount int                `json:"participant_count"`
	RecentTxHashes   []string           `json:"recent_tx_hashes"`
}

// NewNetworkSnapshot copies the identifying fields and treasury of n.
func NewNetworkSnapshot(n types.Network, at time.Time) NetworkSnapshot {
	return NetworkSnapshot{
		NetworkKey:  n.Key(),
		NetworkName: n.Name,
		ChainID:     n.ChainID,
		ProjectID:   n.ProjectID,
		Timestamp:   at,
		Treasury:    n.Treasury,
	}
}

// SaveNetworkSnapshot inserts a snapshot and returns its id.
func SaveNetworkSnapshot(ctx context.Context, s NetworkSnapshot) (int64, error) {
	if DB == nil {
		return 0, ErrNotInitialized
	}
	if s.NetworkKey == "" {
		return 0, fmt.Errorf("snapshot has no network key")
	}

	var exitFloor sql.NullString
	if s.ExitFloor != nil {
		exitFloor = sql.NullString{String: s.ExitFloor.Raw().String(), Valid: true}
	}
	var activeStage sql.NullInt32
	if s.ActiveStage != nil {
		activeStage = sql.NullInt32{Int32: int32(*s.ActiveStage), Valid: true}
	}
	var nextTransition sql.NullTime
	if s.NextTransition != nil {
		nextTransition = sql.NullTime{Time: *s.NextTransition, Valid: true}
	}

	query := `
		INSERT INTO network_snapshots (
			network_key, network_name, chain_id, project_id, snapshot_timestamp,
			surplus_raw, surplus_decimals, total_supply_raw, pending_reserved_raw, token_decimals,
			exit_floor_raw, active_stage, next_transition, participant_count, recent_tx_hashes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err := DB.QueryRowContext(ctx,
		query,
		s.NetworkKey, s.NetworkName, s.ChainID, int64(s.ProjectID), s.Timestamp,
		s.Treasury.Surplus.Raw().String(), s.Treasury.Surplus.Decimals(),
		s.Treasury.TotalSupply.Raw().String(), s.Treasury.PendingReserved.Raw().String(), s.Treasury.TotalSupply.Decimals(),
		exitFloor, activeStage, nextTransition, s.ParticipantCount, pq.Array(s.RecentTxHashes),
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to save network snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshot_id", snapshotID).
		Str("network", s.NetworkKey).
		Str("surplus", s.Treasury.Surplus.String()).
		Msg("Network snapshot saved")

	return snapshotID, nil
}

// GetRecentSnapshots returns up to limit snapshots of one network, newest first.
func GetRecentSnapshots(ctx context.Context, networkKey string, limit int) ([]NetworkSnapshot, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	limit = clampLimit(limit)

	query := `
		SELECT
			snapshot_id, network_key, network_name, chain_id, project_id, snapshot_timestamp,
			surplus_raw, surplus_decimals, total_supply_raw, pending_reserved_raw, token_decimals,
			exit_floor_raw, active_stage, next_transition, participant_count, recent_tx_hashes
		FROM network_snapshots
		WHERE network_key = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT $2
	`

	rows, err := DB.QueryContext(ctx, query, networkKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", networkKey, err)
	}
	defer rows.Close()

	var snapshots []NetworkSnapshot
	for rows.Next() {
		var (
			s                              NetworkSnapshot
			projectID                      int64
			surplus, supply, reserved      string
			surplusDecimals, tokenDecimals int
			exitFloor                      sql.NullString
			activeStage                    sql.NullInt32
			nextTransition                 sql.NullTime
		)
		err := rows.Scan(
			&s.SnapshotID, &s.NetworkKey, &s.NetworkName, &s.ChainID, &projectID, &s.Timestamp,
			&surplus, &surplusDecimals, &supply, &reserved, &tokenDecimals,
			&exitFloor, &activeStage, &nextTransition, &s.ParticipantCount, pq.Array(&s.RecentTxHashes),
		)
		if err != nil {
			log.Error().Err(err).Str("network", networkKey).Msg("Failed to scan snapshot row")
			continue
		}
		s.ProjectID = uint64(projectID)

		if s.Treasury.Surplus, err = amountFromColumn(surplus, surplusDecimals); err != nil {
			log.Error().Err(err).Int64("snapshot_id", s.SnapshotID).Msg("Bad surplus column")
			continue
		}
		if s.Treasury.TotalSupply, err = amountFromColumn(supply, tokenDecimals); err != nil {
			log.Error().Err(err).Int64("snapshot_id", s.SnapshotID).Msg("Bad supply column")
			continue
		}
		if s.Treasury.PendingReserved, err = amountFromColumn(reserved, tokenDecimals); err != nil {
			log.Error().Err(err).Int64("snapshot_id", s.SnapshotID).Msg("Bad reserved column")
			continue
		}
		if exitFloor.Valid {
			floor, err := amountFromColumn(exitFloor.String, surplusDecimals)
			if err != nil {
				log.Error().Err(err).Int64("snapshot_id", s.SnapshotID).Msg("Bad exit floor column")
				continue
			}
			s.ExitFloor = &floor
		}
		if activeStage.Valid {
			i := int(activeStage.Int32)
			s.ActiveStage = &i
		}
		if nextTransition.Valid {
			t := nextTransition.Time
			s.NextTransition = &t
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return snapshots, nil
}

// amountFromColumn reads a NUMERIC(78, 0) column, which lib/pq hands back as text.
func amountFromColumn(raw string, decimals int) (fixedpoint.Amount, error) {
	i, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return fixedpoint.Amount{}, fmt.Errorf("%w: numeric column %q", fixedpoint.ErrParse, raw)
	}
	if decimals < 0 {
		return fixedpoint.Amount{}, fmt.Errorf("%w: negative decimals %d", fixedpoint.ErrParse, decimals)
	}
	return fixedpoint.NewAmount(i, decimals), nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
