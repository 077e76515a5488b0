package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

const (
	statusSelected = "selected"
	statusFailed   = "failed"
)

// SelectionStore persists per-period selections and failures of a plan.
type SelectionStore struct {
	db      *sql.DB
	dialect Dialect
}

var _ ports.SelectionStore = (*SelectionStore)(nil)

// NewSelectionStore wires a sql.DB implementation.
func NewSelectionStore(db *sql.DB, dialect Dialect) *SelectionStore {
	return &SelectionStore{db: db, dialect: dialect}
}

type selectionRow struct {
	clusterID string
	status    string
	reason    string
	feedstock float64
}

// SavePeriod upserts the selected and failed clusters of one period in a transaction.
func (s *SelectionStore) SavePeriod(ctx context.Context, planID string, result domain.SelectionResult) error {
	if s.db == nil {
		return nil
	}

	rows := make([]selectionRow, 0, len(result.Selected)+len(result.Failures))
	for _, c := range result.Selected {
		rows = append(rows, selectionRow{clusterID: c.ID, status: statusSelected, feedstock: c.Feedstock})
	}
	for _, f := range result.Failures {
		rows = append(rows, selectionRow{clusterID: f.ClusterID, status: statusFailed, reason: f.Reason})
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	for start := 0; start < len(rows); start += insertBatch {
		end := min(start+insertBatch, len(rows))
		if err := s.upsert(ctx, tx, planID, result.Year, rows[start:end]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit selections: %w", err)
	}
	return nil
}

func (s *SelectionStore) upsert(ctx context.Context, tx *sql.Tx, planID string, year int, rows []selectionRow) error {
	builder := sq.Insert("sourcing_selections").
		Columns("plan_id", "cluster_no", "year", "status", "reason", "feedstock").
		Suffix(`ON CONFLICT (plan_id, cluster_no) DO UPDATE
			SET year = EXCLUDED.year,
			    status = EXCLUDED.status,
			    reason = EXCLUDED.reason,
			    feedstock = EXCLUDED.feedstock`).
		PlaceholderFormat(s.dialect.placeholder())
	for _, r := range rows {
		builder = builder.Values(planID, r.clusterID, year, r.status, r.reason, r.feedstock)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build selection upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert selections: %w", err)
	}
	return nil
}

// LoadUsed returns the identifiers already selected or failed in earlier periods of a plan.
func (s *SelectionStore) LoadUsed(ctx context.Context, planID string) ([]string, []string, error) {
	if s.db == nil {
		return nil, nil, nil
	}

	query, args, err := sq.Select("cluster_no", "status").
		From("sourcing_selections").
		Where(sq.Eq{"plan_id": planID}).
		OrderBy("cluster_no").
		PlaceholderFormat(s.dialect.placeholder()).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build selection query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query selections: %w", err)
	}

	var used, excluded []string
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			_ = rows.Close()
			return nil, nil, fmt.Errorf("scan selection: %w", err)
		}
		if status == statusFailed {
			excluded = append(excluded, id)
		} else {
			used = append(used, id)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return used, excluded, nil
}
