// internal/handler/demo.go - 演示用户、会话与聊天接口
package handler

import (
	"github.com/gin-gonic/gin"

	"leverage/internal/errs"
	"leverage/internal/service"
	"leverage/pkg/logger"
	"leverage/pkg/response"
)

type DemoHandler struct {
	userService service.UserService
	chatService service.ChatService
	logger      logger.Logger
}

func NewDemoHandler(userService service.UserService, chatService service.ChatService, logger logger.Logger) *DemoHandler {
	return &DemoHandler{
		userService: userService,
		chatService: chatService,
		logger:      logger,
	}
}

type createUserRequest struct {
	Name string `json:"name"`
}

type createChatRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// GetSession 读取 X-Session-Id 对应的用户
func (h *DemoHandler) GetSession(c *gin.Context) {
	if user, ok := sessionUser(c); ok {
		response.OkJson(c, user)
		return
	}
	id := c.GetHeader(SessionHeader)
	if id == "" {
		response.Error(c, errs.NewRecordNotFoundErr("session", "(none)"))
		return
	}
	user, err := h.userService.Session(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, user)
}

// StartSession 创建演示用户作为新会话
func (h *DemoHandler) StartSession(c *gin.Context) {
	var req createUserRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	}
	user, err := h.userService.StartSession(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header(SessionHeader, user.ID)
	response.OkJson(c, user)
}

func (h *DemoHandler) ListUsers(c *gin.Context) {
	q := parsePageQuery(c)
	page, err := h.userService.ListUsers(c.Request.Context(), q.Cursor, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, page)
}

func (h *DemoHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, user)
}

func (h *DemoHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.userService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, gin.H{"id": id, "deleted": deleted})
}

func (h *DemoHandler) DeleteUsers(c *gin.Context) {
	var req idsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ids, err := req.nonEmpty()
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.userService.DeleteUsers(c.Request.Context(), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, gin.H{"deletedCount": n, "ids": ids})
}

func (h *DemoHandler) ListChats(c *gin.Context) {
	q := parsePageQuery(c)
	page, err := h.chatService.ListChats(c.Request.Context(), q.Cursor, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, page)
}

func (h *DemoHandler) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	chat, err := h.chatService.CreateChat(c.Request.Context(), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, gin.H{"id": chat.ID, "title": chat.Title})
}

func (h *DemoHandler) DeleteChat(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.chatService.DeleteChat(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, gin.H{"id": id, "deleted": deleted})
}

func (h *DemoHandler) DeleteChats(c *gin.Context) {
	var req idsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ids, err := req.nonEmpty()
	if err != nil {
		response.Error(c, err)
		return
	}
	n, err := h.chatService.DeleteChats(c.Request.Context(), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, gin.H{"deletedCount": n, "ids": ids})
}

func (h *DemoHandler) ListMessages(c *gin.Context) {
	messages, err := h.chatService.ListMessages(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, messages)
}

func (h *DemoHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	msg, err := h.chatService.SendMessage(c.Request.Context(), c.Param("chatId"), req.UserID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OkJson(c, msg)
}
