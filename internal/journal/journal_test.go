package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkeep/agents-sub000/internal/syncer"
)

func TestRecordAndHistory(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	runs := []syncer.RunRecord{
		{
			ProjectID:     "support-project",
			StartedAt:     base,
			FinishedAt:    base.Add(30 * time.Second),
			Attempts:      1,
			Result:        "promoted",
			PromotedFiles: []string{"tools/weather_forecast.go", "agents/support_agent.go"},
		},
		{
			ProjectID:  "support-project",
			StartedAt:  base.Add(time.Hour),
			FinishedAt: base.Add(time.Hour + 5*time.Second),
			Attempts:   0,
			Result:     "up-to-date",
		},
		{
			ProjectID:  "other-project",
			StartedAt:  base.Add(2 * time.Hour),
			FinishedAt: base.Add(2 * time.Hour),
			Attempts:   3,
			Result:     "failed",
			Error:      "sync failed after 3 attempts",
		},
	}
	for _, rec := range runs {
		require.NoError(t, j.Record(ctx, rec))
	}

	history, err := j.History(ctx, "support-project", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first.
	assert.Equal(t, "up-to-date", history[0].Result)
	assert.Equal(t, "promoted", history[1].Result)
	assert.Equal(t, []string{"tools/weather_forecast.go", "agents/support_agent.go"}, history[1].PromotedFiles)
	assert.Equal(t, 1, history[1].Attempts)
}

func TestHistoryLimit(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := syncer.RunRecord{
			ProjectID:  "p",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
			Result:     "up-to-date",
		}
		require.NoError(t, j.Record(ctx, rec))
	}

	history, err := j.History(ctx, "p", 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(dir)
	require.NoError(t, err)
	rec := syncer.RunRecord{
		ProjectID:  "p",
		StartedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 12, 0, 1, 0, time.UTC),
		Result:     "promoted",
	}
	require.NoError(t, j.Record(ctx, rec))
	require.NoError(t, j.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	history, err := reopened.History(ctx, "p", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "promoted", history[0].Result)
}
