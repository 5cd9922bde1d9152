package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leverage/internal/config"
	"leverage/internal/detector"
	"leverage/internal/errs"
	"leverage/internal/metrics"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/seed"
	"leverage/internal/store"
	"leverage/test/mocks"
)

var sampleListing = []model.TreeEntry{
	{Path: "src", Kind: model.NodeTypeTree},
	{Path: "src/index.ts", Kind: model.NodeTypeBlob},
	{Path: "src/ingestion", Kind: model.NodeTypeTree},
	{Path: "src/ingestion/parser.ts", Kind: model.NodeTypeBlob},
	{Path: "README.md", Kind: model.NodeTypeBlob},
}

type analysisFixture struct {
	projects repository.ProjectRepository
	fetcher  *mocks.MockTreeFetcher
	service  *analysisService
}

func newAnalysisFixture(t *testing.T) *analysisFixture {
	ctrl := gomock.NewController(t)
	backend, err := store.NewMemLevelDB(mocks.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	projects := repository.NewProjectRepository(backend, store.Options{}, mocks.NewMockLogger())
	fetcher := mocks.NewMockTreeFetcher(ctrl)
	svc := NewAnalysisService(
		projects,
		fetcher,
		detector.New(detector.StaticPatterns(seed.PatternsByProject()), config.DefaultIgnorePatterns),
		config.ConfigAnalysis{SingleFlight: true, LeaseTTL: time.Minute},
		metrics.New(),
		mocks.NewMockLogger(),
	)
	return &analysisFixture{projects: projects, fetcher: fetcher, service: svc.(*analysisService)}
}

func TestAnalysisService_UnknownProject(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture(t)

	before, err := f.projects.AllProjects(ctx)
	require.NoError(t, err)

	_, err = f.service.Analyze(ctx, "proj_missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	after, err := f.projects.AllProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAnalysisService_Success(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture(t)
	f.fetcher.EXPECT().FetchTree(gomock.Any(), "https://github.com/example/codetxt").Return(sampleListing, nil)

	report, err := f.service.Analyze(ctx, "proj_codetxt")
	require.NoError(t, err)
	assert.Equal(t, "proj_codetxt", report.ProjectID)
	assert.Equal(t, []string{"src/index.ts"}, report.EntryPoints)
	require.Len(t, report.Mechanisms, 2)
	assert.Equal(t, "File System Traversal", report.Mechanisms[0].Name)
	assert.NotEmpty(t, report.Patterns)
	assert.Equal(t, model.ReportStatusComplete, report.Status)
	require.Len(t, report.FileTree, 2)

	project, err := f.projects.GetProject(ctx, "proj_codetxt")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, project.Status)
	assert.Empty(t, project.LastError)
	require.NotNil(t, project.Analysis)
	assert.Equal(t, report.EntryPoints, project.Analysis.EntryPoints)

	active, err := f.projects.AnalysisLeaseActive(ctx, "proj_codetxt")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAnalysisService_FailureKeepsPreviousReport(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture(t)
	upstream := &errs.UpstreamError{Status: 404, Body: "Not Found"}
	gomock.InOrder(
		f.fetcher.EXPECT().FetchTree(gomock.Any(), gomock.Any()).Return(sampleListing, nil),
		f.fetcher.EXPECT().FetchTree(gomock.Any(), gomock.Any()).Return(nil, upstream),
		f.fetcher.EXPECT().FetchTree(gomock.Any(), gomock.Any()).Return(sampleListing[:2], nil),
	)

	first, err := f.service.Analyze(ctx, "proj_codetxt")
	require.NoError(t, err)

	_, err = f.service.Analyze(ctx, "proj_codetxt")
	var analysisErr *errs.AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, "proj_codetxt", analysisErr.ProjectID)
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	assert.Equal(t, 400, errs.HTTPStatus(err))

	project, err := f.projects.GetProject(ctx, "proj_codetxt")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusFailed, project.Status)
	assert.Contains(t, project.LastError, "404")
	require.NotNil(t, project.Analysis)
	assert.Equal(t, first.EntryPoints, project.Analysis.EntryPoints)

	// a failed project can be retried
	second, err := f.service.Analyze(ctx, "proj_codetxt")
	require.NoError(t, err)
	project, err = f.projects.GetProject(ctx, "proj_codetxt")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, project.Status)
	assert.Empty(t, project.LastError)
	assert.Equal(t, second.EntryPoints, project.Analysis.EntryPoints)
}

func TestAnalysisService_InvalidReferenceFails(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture(t)
	require.NoError(t, f.projects.CreateProject(ctx, &model.Project{
		ID: "proj_bad", Name: "bad", RepoURL: "not a url", Status: model.ProjectStatusPending,
	}))
	f.fetcher.EXPECT().FetchTree(gomock.Any(), "not a url").
		Return(nil, errs.ErrInvalidReference)

	_, err := f.service.Analyze(ctx, "proj_bad")
	assert.ErrorIs(t, err, errs.ErrInvalidReference)

	project, err := f.projects.GetProject(ctx, "proj_bad")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusFailed, project.Status)
	assert.Nil(t, project.Analysis)
}

func TestAnalysisService_CancelledRunStillTerminates(t *testing.T) {
	f := newAnalysisFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.EXPECT().FetchTree(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) ([]model.TreeEntry, error) {
			cancel()
			return nil, ctx.Err()
		})

	_, err := f.service.Analyze(ctx, "proj_vibesdk")
	assert.True(t, errors.Is(err, context.Canceled))

	project, err := f.projects.GetProject(context.Background(), "proj_vibesdk")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusFailed, project.Status)
	assert.NotEqual(t, model.ProjectStatusAnalyzing, project.Status)

	active, err := f.projects.AnalysisLeaseActive(context.Background(), "proj_vibesdk")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestAnalysisService_ConcurrentRunIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.fetcher.EXPECT().FetchTree(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) ([]model.TreeEntry, error) {
			close(started)
			<-release
			return sampleListing, nil
		})

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Analyze(ctx, "proj_vibesdk")
		done <- err
	}()
	<-started

	_, err := f.service.Analyze(ctx, "proj_vibesdk")
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, 409, errs.HTTPStatus(err))

	close(release)
	require.NoError(t, <-done)

	project, err := f.projects.GetProject(ctx, "proj_vibesdk")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusCompleted, project.Status)
}

func TestAnalysisService_HeldLeaseRejectsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f := newAnalysisFixture(t)
	require.NoError(t, f.projects.AcquireAnalysisLease(ctx, "proj_vibesdk", "someone-else", time.Minute))

	_, err := f.service.Analyze(ctx, "proj_vibesdk")
	assert.ErrorIs(t, err, errs.ErrConflict)

	project, err := f.projects.GetProject(ctx, "proj_vibesdk")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusPending, project.Status)
}
