// internal/server/routes.go - API路由表
package server

import (
	"github.com/gin-gonic/gin"

	"leverage/internal/handler"
)

// SetupProjectRoutes 项目与分析路由
func SetupProjectRoutes(api *gin.RouterGroup, h *handler.ProjectHandler) {
	projects := api.Group("/projects")
	{
		projects.GET("", h.ListProjects)
		projects.POST("", h.CreateProject)
		projects.GET("/:id", h.GetProject)
		projects.POST("/:id/analyze", h.AnalyzeProject)
	}
}

// SetupCatalogRoutes 模式与组件路由
func SetupCatalogRoutes(api *gin.RouterGroup, h *handler.CatalogHandler) {
	api.GET("/patterns", h.ListPatterns)
	api.GET("/patterns/:id", h.GetPattern)
	api.GET("/components", h.ListComponents)
	api.POST("/components", h.GenerateComponent)
	api.GET("/components/:id", h.GetComponent)
}

// SetupDemoRoutes 演示会话、用户与聊天路由
func SetupDemoRoutes(api *gin.RouterGroup, h *handler.DemoHandler) {
	api.GET("/auth/session", h.GetSession)
	api.POST("/auth/session", h.StartSession)

	users := api.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.DELETE("/:id", h.DeleteUser)
		users.POST("/deleteMany", h.DeleteUsers)
	}

	chats := api.Group("/chats")
	{
		chats.GET("", h.ListChats)
		chats.POST("", h.CreateChat)
		chats.DELETE("/:id", h.DeleteChat)
		chats.POST("/deleteMany", h.DeleteChats)
		chats.GET("/:chatId/messages", h.ListMessages)
		chats.POST("/:chatId/messages", h.SendMessage)
	}
}
