package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"leverage/internal/errs"
	"leverage/internal/metrics"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/utils"
	"leverage/pkg/logger"
)

// InterruptedReason is recorded as lastError on reaped projects.
const InterruptedReason = "analysis interrupted"

const reaperLeaseTTL = 30 * time.Second

// StaleAnalysisJob 回收卡在 analyzing 状态的项目，使其可以重试
type StaleAnalysisJob struct {
	projects   repository.ProjectRepository
	metrics    *metrics.Metrics
	logger     logger.Logger
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewStaleAnalysisJob 创建回收任务
func NewStaleAnalysisJob(
	projects repository.ProjectRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
	interval time.Duration,
	staleAfter time.Duration,
) *StaleAnalysisJob {
	ctx, cancel := context.WithCancel(context.Background())
	return &StaleAnalysisJob{
		projects:   projects,
		metrics:    metrics,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 启动回收任务
func (j *StaleAnalysisJob) Start() {
	j.logger.Info("starting stale analysis job with interval: %v, stale after: %v", j.interval, j.staleAfter)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		// 立即执行一次，回收上次进程退出时遗留的项目
		j.runOnce()

		for {
			select {
			case <-j.ctx.Done():
				return
			case <-ticker.C:
				j.runOnce()
			}
		}
	}()
}

// Stop 停止回收任务
func (j *StaleAnalysisJob) Stop() {
	j.logger.Info("stopping stale analysis job...")
	j.cancel()
	j.wg.Wait()
	j.logger.Info("stale analysis job stopped")
}

func (j *StaleAnalysisJob) runOnce() {
	n, err := j.Reap(j.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		j.logger.Error("stale analysis job: %v", err)
	}
	if n > 0 {
		j.logger.Info("stale analysis job: reaped %d projects", n)
	}
}

// Reap moves every stale analyzing project to failed and reports how many
// were moved. A project is stale when its updatedAt is older than staleAfter
// and no analysis holds its lease.
func (j *StaleAnalysisJob) Reap(ctx context.Context) (int, error) {
	projects, err := j.projects.AllProjects(ctx)
	if err != nil {
		return 0, err
	}

	owner, err := utils.GenerateUUID()
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return reaped, err
		}
		if !j.isStale(&p) {
			continue
		}
		ok, err := j.reapOne(ctx, p.ID, owner)
		if err != nil {
			j.logger.Error("stale analysis job: failed to reap %s: %v", p.ID, err)
			continue
		}
		if ok {
			reaped++
		}
	}
	j.metrics.ObserveStaleReaped(reaped)
	return reaped, nil
}

func (j *StaleAnalysisJob) isStale(p *model.Project) bool {
	if p.Status != model.ProjectStatusAnalyzing {
		return false
	}
	return j.now().Sub(time.UnixMilli(p.UpdatedAt)) >= j.staleAfter
}

// reapOne holds the project's lease while it re-checks and patches, so a run
// starting concurrently either waits out the reap or is rejected.
func (j *StaleAnalysisJob) reapOne(ctx context.Context, id, owner string) (bool, error) {
	if err := j.projects.AcquireAnalysisLease(ctx, id, owner, reaperLeaseTTL); err != nil {
		if errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if err := j.projects.ReleaseAnalysisLease(context.WithoutCancel(ctx), id, owner); err != nil {
			j.logger.Warn("stale analysis job: failed to release lease on %s: %v", id, err)
		}
	}()

	current, err := j.projects.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !j.isStale(current) {
		return false, nil
	}

	if _, err := j.projects.PatchProject(ctx, id, map[string]any{
		"status":    model.ProjectStatusFailed,
		"updatedAt": j.now().UnixMilli(),
		"lastError": InterruptedReason,
	}); err != nil {
		return false, err
	}
	j.logger.Warn("stale analysis job: project %s was left analyzing, marked failed", id)
	return true, nil
}
