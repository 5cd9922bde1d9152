// internal/handler/catalog.go - 模式目录与组件生成接口
package handler

import (
	"github.com/gin-gonic/gin"

	"leverage/internal/service"
	"leverage/pkg/logger"
	"leverage/pkg/response"
)

type CatalogHandler struct {
	patternService   service.PatternService
	componentService service.ComponentService
	logger           logger.Logger
}

func NewCatalogHandler(patternService service.PatternService, componentService service.ComponentService, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		patternService:   patternService,
		componentService: componentService,
		logger:           logger,
	}
}

func (h *CatalogHandler) ListPatterns(c *gin.Context) {
	q := parsePageQuery(c)
	page, err := h.patternService.ListPatterns(c.Request.Context(), q.Cursor, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, page)
}

func (h *CatalogHandler) GetPattern(c *gin.Context) {
	pattern, err := h.patternService.GetPattern(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, pattern)
}

// GenerateComponent 基于模式生成组件
// @Summary 生成组件
// @Tags components
// @Accept json
// @Produce json
// @Router /api/components [post]
func (h *CatalogHandler) GenerateComponent(c *gin.Context) {
	var req service.GenerateComponentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	component, err := h.componentService.Generate(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, component)
}

func (h *CatalogHandler) ListComponents(c *gin.Context) {
	q := parsePageQuery(c)
	page, err := h.componentService.ListComponents(c.Request.Context(), q.Cursor, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, page)
}

func (h *CatalogHandler) GetComponent(c *gin.Context) {
	component, err := h.componentService.GetComponent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, component)
}
