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
)

// ChatService 演示聊天
type ChatService interface {
	ListChats(ctx context.Context, cursor string, limit int) (store.Page[model.Chat], error)
	CreateChat(ctx context.Context, title string) (*model.Chat, error)
	DeleteChat(ctx context.Context, id string) (bool, error)
	DeleteChats(ctx context.Context, ids []string) (int, error)
	ListMessages(ctx context.Context, chatID string) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, chatID, userID, text string) (*model.ChatMessage, error)
}

type chatService struct {
	chats repository.ChatRepository
	now   func() time.Time
}

func NewChatService(chats repository.ChatRepository) ChatService {
	return &chatService{chats: chats, now: time.Now}
}

func (s *chatService) ListChats(ctx context.Context, cursor string, limit int) (store.Page[model.Chat], error) {
	return s.chats.ListChats(ctx, cursor, limit)
}

func (s *chatService) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.NewMissingParamError("title")
	}
	id, err := utils.GenerateUUID()
	if err != nil {
		return nil, err
	}
	chat := &model.Chat{ID: id, Title: title, Messages: []model.ChatMessage{}}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *chatService) DeleteChat(ctx context.Context, id string) (bool, error) {
	return s.chats.DeleteChat(ctx, id)
}

func (s *chatService) DeleteChats(ctx context.Context, ids []string) (int, error) {
	return s.chats.DeleteChats(ctx, ids)
}

func (s *chatService) ListMessages(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Messages == nil {
		return []model.ChatMessage{}, nil
	}
	return chat.Messages, nil
}

func (s *chatService) SendMessage(ctx context.Context, chatID, userID, text string) (*model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return nil, errs.NewMissingParamError("userId and text")
	}
	id, err := utils.GenerateUUID()
	if err != nil {
		return nil, err
	}
	msg := model.ChatMessage{ID: id, ChatID: chatID, UserID: userID, Text: text, TS: s.now().UnixMilli()}
	if err := s.chats.AppendMessage(ctx, chatID, msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
