package job

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leverage/internal/metrics"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/store"
	"leverage/test/mocks"
)

func newJobFixture(t *testing.T, now time.Time) (*StaleAnalysisJob, repository.ProjectRepository, *metrics.Metrics) {
	backend, err := store.NewMemLevelDB(mocks.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	clock := func() time.Time { return now }
	projects := repository.NewProjectRepository(backend, store.Options{Now: clock}, mocks.NewMockLogger())
	m := metrics.New()
	j := NewStaleAnalysisJob(projects, m, mocks.NewMockLogger(), time.Minute, 5*time.Minute)
	j.now = clock
	return j, projects, m
}

func TestStaleAnalysisJob_Reap(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	j, projects, m := newJobFixture(t, now)

	create := func(id string, status model.ProjectStatus, age time.Duration) {
		require.NoError(t, projects.CreateProject(ctx, &model.Project{
			ID: id, Name: id, RepoURL: "https://github.com/a/" + id,
			Status: status, UpdatedAt: now.Add(-age).UnixMilli(),
		}))
	}
	create("proj_stale", model.ProjectStatusAnalyzing, 10*time.Minute)
	create("proj_fresh", model.ProjectStatusAnalyzing, time.Minute)
	create("proj_leased", model.ProjectStatusAnalyzing, 10*time.Minute)
	create("proj_done", model.ProjectStatusCompleted, time.Hour)
	require.NoError(t, projects.AcquireAnalysisLease(ctx, "proj_leased", "live-run", time.Hour))

	n, err := j.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stale, err := projects.GetProject(ctx, "proj_stale")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusFailed, stale.Status)
	assert.Equal(t, InterruptedReason, stale.LastError)
	assert.Equal(t, now.UnixMilli(), stale.UpdatedAt)

	for id, want := range map[string]model.ProjectStatus{
		"proj_fresh":  model.ProjectStatusAnalyzing,
		"proj_leased": model.ProjectStatusAnalyzing,
		"proj_done":   model.ProjectStatusCompleted,
	} {
		p, err := projects.GetProject(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, p.Status, id)
	}

	// the reaper gives its lease back
	active, err := projects.AnalysisLeaseActive(ctx, "proj_stale")
	require.NoError(t, err)
	assert.False(t, active)

	expected := `
# HELP leverage_analysis_stale_reaped_total Projects moved from analyzing to failed by the stale-analysis job.
# TYPE leverage_analysis_stale_reaped_total counter
leverage_analysis_stale_reaped_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "leverage_analysis_stale_reaped_total"))

	n, err = j.Reap(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStaleAnalysisJob_StartStop(t *testing.T) {
	j, _, _ := newJobFixture(t, time.Now())
	j.Start()
	j.Stop()
}
