package repository

import (
	"context"
	"time"

	"leverage/internal/model"
	"leverage/internal/seed"
	"leverage/internal/store"
	"leverage/pkg/logger"
)

// ProjectRepository 项目数据访问层
type ProjectRepository interface {
	// CreateProject 创建项目，ID 已存在时返回 ErrConflict
	CreateProject(ctx context.Context, project *model.Project) error
	// GetProject 根据ID获取项目
	GetProject(ctx context.Context, id string) (*model.Project, error)
	// ListProjects 按创建顺序分页列出项目
	ListProjects(ctx context.Context, cursor string, limit int) (store.Page[model.Project], error)
	// AllProjects 列出所有项目
	AllProjects(ctx context.Context) ([]model.Project, error)
	// PatchProject 按字段合并更新项目
	PatchProject(ctx context.Context, id string, fields map[string]any) (*model.Project, error)
	// AcquireAnalysisLease 获取分析租约，他人持有时返回 ErrConflict
	AcquireAnalysisLease(ctx context.Context, id, owner string, ttl time.Duration) error
	// ReleaseAnalysisLease 释放分析租约
	ReleaseAnalysisLease(ctx context.Context, id, owner string) error
	// AnalysisLeaseActive 租约是否仍然有效
	AnalysisLeaseActive(ctx context.Context, id string) (bool, error)
}

type projectRepository struct {
	projects *store.Collection[model.Project]
	logger   logger.Logger
}

// NewProjectRepository 创建项目Repository
func NewProjectRepository(backend store.Backend, opts store.Options, logger logger.Logger) ProjectRepository {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	seedFn := func() []model.Project { return seed.Projects(now()) }
	return &projectRepository{
		projects: store.NewCollection(backend, model.CollectionProjects, seedFn, opts, logger),
		logger:   logger,
	}
}

func (r *projectRepository) CreateProject(ctx context.Context, project *model.Project) error {
	return r.projects.Create(ctx, *project)
}

func (r *projectRepository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := r.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListProjects(ctx context.Context, cursor string, limit int) (store.Page[model.Project], error) {
	return r.projects.List(ctx, cursor, limit)
}

func (r *projectRepository) AllProjects(ctx context.Context) ([]model.Project, error) {
	return r.projects.All(ctx)
}

func (r *projectRepository) PatchProject(ctx context.Context, id string, fields map[string]any) (*model.Project, error) {
	project, err := r.projects.Patch(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) AcquireAnalysisLease(ctx context.Context, id, owner string, ttl time.Duration) error {
	return r.projects.AcquireLease(ctx, id, owner, ttl)
}

func (r *projectRepository) ReleaseAnalysisLease(ctx context.Context, id, owner string) error {
	return r.projects.ReleaseLease(ctx, id, owner)
}

func (r *projectRepository) AnalysisLeaseActive(ctx context.Context, id string) (bool, error) {
	return r.projects.LeaseActive(ctx, id)
}
