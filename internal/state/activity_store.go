package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rev-net/revdash/internal/types"
)

// ActivitySummary represents high-level activity statistics for one network.
type ActivitySummary struct {
	NetworkName  string     `json:"network_name"`
	Payments     int        `json:"payments"`
	CashOuts     int        `json:"cash_outs"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// SaveActivity upserts feed items under a network name. Items are keyed by chain, tx hash
// and kind, so refreshing an overlapping window rewrites rather than duplicates rows.
func SaveActivity(ctx context.Context, networkName string, items []types.ActivityItem) (int, error) {
	if DB == nil {
		return 0, ErrNotInitialized
	}
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin activity transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activity_items (
			chain_id, tx_hash, kind, project_id, network_name, event_timestamp, account,
			token_amount_raw, token_decimals, native_amount_raw, native_decimals, memo, line
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (chain_id, tx_hash, kind) DO UPDATE SET
			event_timestamp = EXCLUDED.event_timestamp,
			account = EXCLUDED.account,
			token_amount_raw = EXCLUDED.token_amount_raw,
			native_amount_raw = EXCLUDED.native_amount_raw,
			memo = EXCLUDED.memo,
			line = EXCLUDED.line,
			recorded_at = CURRENT_TIMESTAMP;
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare activity upsert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, it := range items {
		if err := it.Validate(); err != nil {
			log.Warn().Err(err).Str("network", networkName).Msg("Skipping invalid activity item")
			continue
		}
		_, err := stmt.ExecContext(ctx,
			it.ChainID, it.TxHash, string(it.Kind), int64(it.ProjectID), networkName, it.Timestamp, it.Account,
			it.TokenAmount.Raw().String(), it.TokenAmount.Decimals(),
			it.NativeAmount.Raw().String(), it.NativeAmount.Decimals(),
			it.Memo, it.Line,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert activity %s: %w", it.TxHash, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit activity: %w", err)
	}
	log.Debug().Str("network", networkName).Int("saved", saved).Msg("Activity saved")
	return saved, nil
}

// GetRecentActivity returns up to limit stored feed items for a network name, newest first,
// in the same order the live feed uses.
func GetRecentActivity(ctx context.Context, networkName string, limit int) ([]types.ActivityItem, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}
	limit = clampLimit(limit)

	query := `
		SELECT
			kind, chain_id, project_id, tx_hash, event_timestamp, account,
			token_amount_raw, token_decimals, native_amount_raw, native_decimals, memo, line
		FROM activity_items
		WHERE network_name = $1
		ORDER BY event_timestamp DESC, chain_id ASC, tx_hash ASC
		LIMIT $2
	`

	rows, err := DB.QueryContext(ctx, query, networkName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity for %s: %w", networkName, err)
	}
	defer rows.Close()

	var items []types.ActivityItem
	for rows.Next() {
		var (
			it                            types.ActivityItem
			kind                          string
			projectID                     int64
			tokenRaw, nativeRaw           string
			tokenDecimals, nativeDecimals int
		)
		err := rows.Scan(
			&kind, &it.ChainID, &projectID, &it.TxHash, &it.Timestamp, &it.Account,
			&tokenRaw, &tokenDecimals, &nativeRaw, &nativeDecimals, &it.Memo, &it.Line,
		)
		if err != nil {
			log.Error().Err(err).Str("network", networkName).Msg("Failed to scan activity row")
			continue
		}
		it.Kind = types.ActivityKind(kind)
		it.ProjectID = uint64(projectID)
		if it.TokenAmount, err = amountFromColumn(tokenRaw, tokenDecimals); err != nil {
			log.Error().Err(err).Str("tx_hash", it.TxHash).Msg("Bad token amount column")
			continue
		}
		if it.NativeAmount, err = amountFromColumn(nativeRaw, nativeDecimals); err != nil {
			log.Error().Err(err).Str("tx_hash", it.TxHash).Msg("Bad native amount column")
			continue
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return items, nil
}

// GetActivitySummary counts stored payments and cash outs for a network name.
func GetActivitySummary(ctx context.Context, networkName string) (*ActivitySummary, error) {
	if DB == nil {
		return nil, ErrNotInitialized
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = $2),
			COUNT(*) FILTER (WHERE kind = $3),
			MAX(event_timestamp)
		FROM activity_items
		WHERE network_name = $1
	`

	summary := &ActivitySummary{NetworkName: networkName}
	var last sql.NullTime
	err := DB.QueryRowContext(ctx, query, networkName, string(types.ActivityPay), string(types.ActivityCashOut)).
		Scan(&summary.Payments, &summary.CashOuts, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize activity for %s: %w", networkName, err)
	}
	if last.Valid {
		t := last.Time
		summary.LastActivity = &t
	}
	return summary, nil
}
