package service

import (
	"context"
	"strings"
	"time"

	"leverage/internal/errs"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/store"
	"leverage/internal/utils"
	"leverage/pkg/logger"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name    string `json:"name"`
	RepoURL string `json:"repoUrl"`
	OwnerID string `json:"-"`
}

// ProjectService 项目管理
type ProjectService interface {
	ListProjects(ctx context.Context, cursor string, limit int) (store.Page[model.Project], error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	// CreateProject stores a pending project. The repository url is only
	// checked for presence here; its shape is validated by the analysis run.
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*model.Project, error)
}

type projectService struct {
	projects repository.ProjectRepository
	logger   logger.Logger
	now      func() time.Time
}

func NewProjectService(projects repository.ProjectRepository, logger logger.Logger) ProjectService {
	return &projectService{
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *projectService) ListProjects(ctx context.Context, cursor string, limit int) (store.Page[model.Project], error) {
	return s.projects.ListProjects(ctx, cursor, limit)
}

func (s *projectService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return s.projects.GetProject(ctx, id)
}

func (s *projectService) CreateProject(ctx context.Context, req *CreateProjectRequest) (*model.Project, error) {
	name := strings.TrimSpace(req.Name)
	repoURL := strings.TrimSpace(req.RepoURL)
	if name == "" || repoURL == "" {
		return nil, errs.NewMissingParamError("name and repoUrl")
	}

	id, err := utils.NewPrefixedID(model.ProjectIDPrefix)
	if err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()
	project := &model.Project{
		ID:        id,
		Name:      name,
		RepoURL:   repoURL,
		Status:    model.ProjectStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		OwnerID:   req.OwnerID,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	s.logger.Info("project: created %s for %s", id, repoURL)
	return project, nil
}
