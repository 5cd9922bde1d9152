package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leverage/internal/config"
	"leverage/internal/detector"
	"leverage/internal/errs"
	"leverage/internal/metrics"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/utils"
	"leverage/pkg/filetree"
	"leverage/pkg/logger"
)

// AnalysisService 项目分析编排
type AnalysisService interface {
	// Analyze runs fetch, detect and build for one project and stores the
	// outcome on the project. Unknown ids fail with ErrNotFound before
	// anything is written. Failures inside the run move the project to
	// failed and are returned as *errs.AnalysisError.
	Analyze(ctx context.Context, projectID string) (*model.IngestionReport, error)
}

type analysisService struct {
	projects repository.ProjectRepository
	fetcher  repository.TreeFetcher
	detector *detector.Detector
	config   config.ConfigAnalysis
	metrics  *metrics.Metrics
	logger   logger.Logger
	now      func() time.Time
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(
	projects repository.ProjectRepository,
	fetcher repository.TreeFetcher,
	detector *detector.Detector,
	cfg config.ConfigAnalysis,
	metrics *metrics.Metrics,
	logger logger.Logger,
) AnalysisService {
	return &analysisService{
		projects: projects,
		fetcher:  fetcher,
		detector: detector,
		config:   cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *analysisService) Analyze(ctx context.Context, projectID string) (*model.IngestionReport, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if s.config.SingleFlight {
		owner, err := utils.GenerateUUID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate lease owner: %w", err)
		}
		if err := s.projects.AcquireAnalysisLease(ctx, projectID, owner, s.config.LeaseTTL); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				s.metrics.ObserveAnalysis(metrics.OutcomeRejected, 0)
				s.logger.Warn("analysis: project %s is already being analyzed", projectID)
			}
			return nil, err
		}
		defer func() {
			if err := s.projects.ReleaseAnalysisLease(context.WithoutCancel(ctx), projectID, owner); err != nil {
				s.logger.Error("analysis: failed to release lease on %s: %v", projectID, err)
			}
		}()
	}

	start := s.now()
	if _, err := s.projects.PatchProject(ctx, projectID, map[string]any{
		"status":    model.ProjectStatusAnalyzing,
		"updatedAt": start.UnixMilli(),
	}); err != nil {
		return nil, err
	}
	s.logger.Info("analysis: project %s (%s) is analyzing", projectID, project.RepoURL)

	report, runErr := s.run(ctx, project)
	if runErr != nil {
		s.markFailed(ctx, projectID, runErr)
		s.metrics.ObserveAnalysis(metrics.OutcomeFailed, s.now().Sub(start))
		return nil, &errs.AnalysisError{ProjectID: projectID, Err: runErr}
	}

	// report and status land in one patch
	if _, err := s.projects.PatchProject(context.WithoutCancel(ctx), projectID, map[string]any{
		"status":    model.ProjectStatusCompleted,
		"analysis":  report,
		"updatedAt": s.now().UnixMilli(),
		"lastError": nil,
	}); err != nil {
		s.markFailed(ctx, projectID, err)
		s.metrics.ObserveAnalysis(metrics.OutcomeFailed, s.now().Sub(start))
		return nil, fmt.Errorf("failed to store report of %s: %w", projectID, err)
	}

	elapsed := s.now().Sub(start)
	s.metrics.ObserveAnalysis(metrics.OutcomeCompleted, elapsed)
	s.logger.Info("analysis: project %s completed in %s, %d entry points, %d mechanisms",
		projectID, elapsed, len(report.EntryPoints), len(report.Mechanisms))
	return report, nil
}

func (s *analysisService) run(ctx context.Context, project *model.Project) (*model.IngestionReport, error) {
	entries, err := s.fetcher.FetchTree(ctx, project.RepoURL)
	if err != nil {
		return nil, err
	}

	found := s.detector.Detect(project.ID, entries)
	return &model.IngestionReport{
		ProjectID:   project.ID,
		EntryPoints: found.EntryPoints,
		Mechanisms:  found.Mechanisms,
		Patterns:    found.Patterns,
		FileTree:    filetree.Build(entries),
		Status:      model.ReportStatusComplete,
	}, nil
}

// markFailed records the failure even when the caller's context is gone. A
// previous report, if any, is left in place.
func (s *analysisService) markFailed(ctx context.Context, projectID string, cause error) {
	s.logger.Warn("analysis: project %s failed: %v", projectID, cause)
	if _, err := s.projects.PatchProject(context.WithoutCancel(ctx), projectID, map[string]any{
		"status":    model.ProjectStatusFailed,
		"updatedAt": s.now().UnixMilli(),
		"lastError": cause.Error(),
	}); err != nil {
		s.logger.Error("analysis: failed to mark project %s as failed: %v", projectID, err)
	}
}
