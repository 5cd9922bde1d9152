// internal/handler/project.go - 项目与分析接口
package handler

import (
	"github.com/gin-gonic/gin"

	"leverage/internal/service"
	"leverage/pkg/logger"
	"leverage/pkg/response"
)

// ProjectHandler 项目相关HTTP处理器
type ProjectHandler struct {
	projectService  service.ProjectService
	analysisService service.AnalysisService
	logger          logger.Logger
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectService service.ProjectService, analysisService service.AnalysisService, logger logger.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		analysisService: analysisService,
		logger:          logger,
	}
}

// ListProjects 分页列出项目
// @Summary 项目列表
// @Tags projects
// @Produce json
// @Param cursor query string false "分页游标"
// @Param limit query int false "每页数量"
// @Router /api/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	q := parsePageQuery(c)
	page, err := h.projectService.ListProjects(c.Request.Context(), q.Cursor, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, page)
}

// GetProject 获取单个项目
// @Summary 项目详情
// @Tags projects
// @Produce json
// @Param id path string true "项目ID"
// @Router /api/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, project)
}

// CreateProject 创建项目，所有者取自会话
// @Summary 创建项目
// @Tags projects
// @Accept json
// @Produce json
// @Router /api/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if user, ok := sessionUser(c); ok {
		req.OwnerID = user.ID
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("project created: Id=%s, RepoURL=%s", project.ID, project.RepoURL)
	response.OkJson(c, project)
}

// AnalyzeProject 同步执行分析并返回报告
// @Summary 分析项目
// @Description 拉取仓库文件列表，识别入口与机制，生成文件树
// @Tags projects
// @Produce json
// @Param id path string true "项目ID"
// @Failure 400 "分析失败"
// @Failure 404 "项目不存在"
// @Failure 409 "分析进行中"
// @Router /api/projects/{id}/analyze [post]
func (h *ProjectHandler) AnalyzeProject(c *gin.Context) {
	report, err := h.analysisService.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, report)
}
