package storage

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/ports"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()

	db, dialect, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.Equal(t, SQLite, dialect)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, EnsureSchema(context.Background(), db))
	return db
}

func seedClusters() []domain.Cluster {
	return []domain.Cluster{
		{ID: "c1", TreatmentID: 1, Year: 2025, LandingLat: 40.01, LandingLng: -121.01, CenterLat: 40.0, CenterLng: -121.0, Area: 12, LandUse: "Private", County: "Plumas", SiteClass: 3},
		{ID: "c2", TreatmentID: 1, Year: 2025, LandingLat: 40.11, LandingLng: -121.11, CenterLat: 40.1, CenterLng: -121.1, Area: 8},
		{ID: "c3", TreatmentID: 1, Year: 2025, LandingLat: 41.0, LandingLng: -122.0, CenterLat: 41.0, CenterLng: -122.0, Area: 30},
		{ID: "c4", TreatmentID: 2, Year: 2025, CenterLat: 40.0, CenterLng: -121.0, Area: 5},
		{ID: "c5", TreatmentID: 1, Year: 2026, CenterLat: 40.0, CenterLng: -121.0, Area: 5},
	}
}

func clusterIDs(clusters []domain.Cluster) []string {
	out := make([]string, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, c.ID)
	}
	return out
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, _, err := Open("mysql", "root@/db")
	require.Error(t, err)
}

func TestClusterRepositoryQueryScopesByBoundAndExclusions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewClusterRepository(openMemory(t), SQLite)
	require.NoError(t, repo.Insert(ctx, seedClusters()))

	bound := orb.Bound{Min: orb.Point{-121.5, 39.5}, Max: orb.Point{-120.5, 40.5}}

	got, err := repo.Query(ctx, ports.ClusterQuery{TreatmentID: 1, Year: 2025, Bound: bound})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, clusterIDs(got))

	assert.Equal(t, "Private", got[0].LandUse)
	assert.Equal(t, "Plumas", got[0].County)
	assert.Equal(t, 3, got[0].SiteClass)
	assert.Equal(t, 40.01, got[0].LandingLat)
	assert.Empty(t, got[1].County)

	got, err = repo.Query(ctx, ports.ClusterQuery{TreatmentID: 1, Year: 2025, Bound: bound, ExcludedIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, clusterIDs(got))
}

func TestClusterRepositoryInsertUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewClusterRepository(openMemory(t), SQLite)
	require.NoError(t, repo.Insert(ctx, seedClusters()))

	updated := seedClusters()[0]
	updated.Area = 99
	require.NoError(t, repo.Insert(ctx, []domain.Cluster{updated}))

	bound := orb.Bound{Min: orb.Point{-121.01, 39.99}, Max: orb.Point{-120.99, 40.01}}
	got, err := repo.Query(ctx, ports.ClusterQuery{TreatmentID: 1, Year: 2025, Bound: bound})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 99.0, got[0].Area)
}

func TestSQLiteQueryBindsExclusionsAsOneArgument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewClusterRepository(openMemory(t), SQLite)
	require.NoError(t, repo.Insert(ctx, seedClusters()))

	excluded := make([]string, 0, 40001)
	for i := range 40000 {
		excluded = append(excluded, fmt.Sprintf("gone-%d", i))
	}
	excluded = append(excluded, "c1")

	query, args, err := repo.selectQuery(ports.ClusterQuery{TreatmentID: 1, Year: 2025, ExcludedIDs: excluded}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "json_each(?)")
	assert.Len(t, args, 7)

	bound := orb.Bound{Min: orb.Point{-121.5, 39.5}, Max: orb.Point{-120.5, 40.5}}
	got, err := repo.Query(ctx, ports.ClusterQuery{TreatmentID: 1, Year: 2025, Bound: bound, ExcludedIDs: excluded})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, clusterIDs(got))
}

func TestPostgresQueryUsesArrayExclusion(t *testing.T) {
	t.Parallel()

	repo := NewClusterRepository(nil, Postgres)
	query, args, err := repo.selectQuery(ports.ClusterQuery{
		TreatmentID: 1,
		Year:        2025,
		ExcludedIDs: []string{"a", "b"},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "cluster_no <> ALL($7)")
	assert.NotContains(t, query, "?")
	assert.Len(t, args, 7)
}

func TestSelectionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSelectionStore(openMemory(t), SQLite)

	first := domain.SelectionResult{
		Year: 2025,
		Selected: []domain.EvaluatedCluster{
			{Cluster: domain.Cluster{ID: "c2"}, Feedstock: 40},
			{Cluster: domain.Cluster{ID: "c1"}, Feedstock: 60},
		},
		Failures: []domain.ClusterFailure{{ClusterID: "c9", Reason: "no route"}},
	}
	require.NoError(t, store.SavePeriod(ctx, "plan-a", first))

	second := domain.SelectionResult{
		Year:     2026,
		Selected: []domain.EvaluatedCluster{{Cluster: domain.Cluster{ID: "c3"}, Feedstock: 10}},
	}
	require.NoError(t, store.SavePeriod(ctx, "plan-a", second))
	require.NoError(t, store.SavePeriod(ctx, "plan-b", second))

	used, excluded, err := store.LoadUsed(ctx, "plan-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2", "c3"}, used)
	assert.Equal(t, []string{"c9"}, excluded)

	used, excluded, err = store.LoadUsed(ctx, "plan-c")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Empty(t, excluded)
}

func TestSelectionStoreEmptyPeriodIsNoop(t *testing.T) {
	t.Parallel()

	store := NewSelectionStore(openMemory(t), SQLite)
	require.NoError(t, store.SavePeriod(context.Background(), "plan", domain.SelectionResult{Year: 2025}))
}
