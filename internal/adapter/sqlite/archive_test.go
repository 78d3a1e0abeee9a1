package sqlite_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/heatguard-service/internal/adapter/sqlite"
	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/couchcryptid/heatguard-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2025, time.July, 14, 5, 30, 0, 0, time.UTC)

func newArchive(t *testing.T) (*sqlite.Archive, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	path := filepath.Join(t.TempDir(), "nested", "heatguard.db")
	a, err := sqlite.Open(context.Background(), path, slog.Default(), metrics)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, metrics
}

func bulletin(id string, risk domain.RiskCategory, at time.Time) domain.Bulletin {
	return domain.Bulletin{
		ID:             id,
		Location:       "Austin, TX",
		Role:           domain.RoleCourier,
		PeakRisk:       risk,
		SafeCeiling:    domain.RiskModerate,
		SessionMinutes: 90,
		Summary:        "Peak risk " + risk.String() + ".",
		Hydration:      []domain.HydrationReminder{{AtMinute: 20, VolumeOz: 8}},
		GeneratedAt:    at,
	}
}

func TestArchive_SaveAndGet(t *testing.T) {
	a, metrics := newArchive(t)
	ctx := context.Background()

	want := bulletin("bulletin-1", domain.RiskHigh, generated)
	require.NoError(t, a.Save(ctx, want))

	got, err := a.Get(ctx, "bulletin-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Location, got.Location)
	assert.Equal(t, want.Role, got.Role)
	assert.Equal(t, want.PeakRisk, got.PeakRisk)
	assert.Equal(t, want.Hydration, got.Hydration)
	assert.True(t, want.GeneratedAt.Equal(got.GeneratedAt))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArchiveOperations.WithLabelValues("save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArchiveOperations.WithLabelValues("get", "success")))
}

func TestArchive_GetMissing(t *testing.T) {
	a, metrics := newArchive(t)

	_, err := a.Get(context.Background(), "bulletin-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBulletinNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ArchiveOperations.WithLabelValues("get", "not_found")))
}

func TestArchive_SaveReplacesByID(t *testing.T) {
	a, _ := newArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, bulletin("bulletin-1", domain.RiskModerate, generated)))
	require.NoError(t, a.Save(ctx, bulletin("bulletin-1", domain.RiskExtreme, generated.Add(time.Hour))))

	got, err := a.Get(ctx, "bulletin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskExtreme, got.PeakRisk)

	recent, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestArchive_LoadBatchIsReplaySafe(t *testing.T) {
	a, metrics := newArchive(t)
	ctx := context.Background()

	var events []domain.OutputEvent
	for i, id := range []string{"bulletin-a", "bulletin-b", "bulletin-c"} {
		e, err := domain.SerializeBulletin(bulletin(id, domain.RiskLow, generated.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		events = append(events, e)
	}

	require.NoError(t, a.LoadBatch(ctx, events))
	require.NoError(t, a.LoadBatch(ctx, events))
	require.NoError(t, a.LoadBatch(ctx, nil))

	recent, err := a.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "bulletin-c", recent[0].ID)
	assert.Equal(t, "bulletin-b", recent[1].ID)

	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.ArchiveOperations.WithLabelValues("save", "success")))
}

func TestArchive_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "heatguard.db")

	a, err := sqlite.Open(ctx, path, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, bulletin("bulletin-1", domain.RiskHigh, generated)))
	require.NoError(t, a.Close())

	reopened, err := sqlite.Open(ctx, path, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, "bulletin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, got.PeakRisk)
}

func TestArchive_MemoryAndReadiness(t *testing.T) {
	a, err := sqlite.Open(context.Background(), sqlite.MemoryPath, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)

	assert.NoError(t, a.CheckReadiness(context.Background()))
	require.NoError(t, a.Close())
	assert.Error(t, a.CheckReadiness(context.Background()))
}
