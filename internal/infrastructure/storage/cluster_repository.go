package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

var clusterColumns = []string{
	"cluster_no", "treatmentid", "year",
	"landing_lat", "landing_lng", "center_lat", "center_lng",
	"area", "land_use", "forest_type", "haz_class", "site_class", "county_name",
}

// ClusterRepository reads candidate clusters from the clusters table.
type ClusterRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ ports.ClusterRepository = (*ClusterRepository)(nil)

// NewClusterRepository wires a sql.DB implementation.
func NewClusterRepository(db *sql.DB, dialect Dialect) *ClusterRepository {
	return &ClusterRepository{db: db, dialect: dialect}
}

// Query returns clusters of the treatment and year whose center lies in the bound,
// skipping excluded identifiers.
func (r *ClusterRepository) Query(ctx context.Context, q ports.ClusterQuery) ([]domain.Cluster, error) {
	query, args, err := r.selectQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cluster query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clusters: %w", err)
	}

	var result []domain.Cluster
	for rows.Next() {
		var (
			c                           domain.Cluster
			landUse, forestType, county sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.TreatmentID, &c.Year,
			&c.LandingLat, &c.LandingLng, &c.CenterLat, &c.CenterLng,
			&c.Area, &landUse, &forestType, &c.HazClass, &c.SiteClass, &county,
		); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		c.LandUse = landUse.String
		c.ForestType = forestType.String
		c.County = county.String
		result = append(result, c)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

func (r *ClusterRepository) selectQuery(q ports.ClusterQuery) sq.SelectBuilder {
	builder := sq.Select(clusterColumns...).
		From("clusters").
		Where(sq.Eq{"treatmentid": q.TreatmentID, "year": q.Year}).
		Where(sq.GtOrEq{"center_lat": q.Bound.Min.Lat()}).
		Where(sq.LtOrEq{"center_lat": q.Bound.Max.Lat()}).
		Where(sq.GtOrEq{"center_lng": q.Bound.Min.Lon()}).
		Where(sq.LtOrEq{"center_lng": q.Bound.Max.Lon()}).
		OrderBy("cluster_no").
		PlaceholderFormat(r.dialect.placeholder())

	if len(q.ExcludedIDs) > 0 {
		if r.dialect == Postgres {
			builder = builder.Where("cluster_no <> ALL(?)", pq.StringArray(q.ExcludedIDs))
		} else {
			// One bound JSON array keeps the statement under SQLite's variable limit.
			ids, _ := json.Marshal(q.ExcludedIDs) // a []string always marshals
			builder = builder.Where("cluster_no NOT IN (SELECT value FROM json_each(?))", string(ids))
		}
	}
	return builder
}

// insertBatch bounds the rows per statement below SQLite's variable limit.
const insertBatch = 500

// Insert upserts clusters, used to seed local databases.
func (r *ClusterRepository) Insert(ctx context.Context, clusters []domain.Cluster) error {
	for start := 0; start < len(clusters); start += insertBatch {
		end := min(start+insertBatch, len(clusters))
		if err := r.insert(ctx, clusters[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ClusterRepository) insert(ctx context.Context, clusters []domain.Cluster) error {
	builder := sq.Insert("clusters").
		Columns(clusterColumns...).
		Suffix(`ON CONFLICT (cluster_no, treatmentid, year) DO UPDATE
			SET landing_lat = EXCLUDED.landing_lat,
			    landing_lng = EXCLUDED.landing_lng,
			    center_lat = EXCLUDED.center_lat,
			    center_lng = EXCLUDED.center_lng,
			    area = EXCLUDED.area`).
		PlaceholderFormat(r.dialect.placeholder())
	for _, c := range clusters {
		builder = builder.Values(
			c.ID, c.TreatmentID, c.Year,
			c.LandingLat, c.LandingLng, c.CenterLat, c.CenterLng,
			c.Area, c.LandUse, c.ForestType, c.HazClass, c.SiteClass, c.County,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build cluster insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert clusters: %w", err)
	}
	return nil
}
