package repository

import (
	"context"
	"time"

	"leverage/internal/model"
	"leverage/internal/seed"
	"leverage/internal/store"
	"leverage/pkg/logger"
)

// ChatRepository 聊天数据访问层，消息内嵌在聊天记录中
type ChatRepository interface {
	CreateChat(ctx context.Context, chat *model.Chat) error
	GetChat(ctx context.Context, id string) (*model.Chat, error)
	ListChats(ctx context.Context, cursor string, limit int) (store.Page[model.Chat], error)
	DeleteChat(ctx context.Context, id string) (bool, error)
	DeleteChats(ctx context.Context, ids []string) (int, error)
	// AppendMessage 在同一事务内追加消息
	AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error
}

type chatRepository struct {
	chats *store.Collection[model.Chat]
}

func NewChatRepository(backend store.Backend, opts store.Options, logger logger.Logger) ChatRepository {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	seedFn := func() []model.Chat { return seed.Chats(now()) }
	return &chatRepository{
		chats: store.NewCollection(backend, model.CollectionChats, seedFn, opts, logger),
	}
}

func (r *chatRepository) CreateChat(ctx context.Context, chat *model.Chat) error {
	return r.chats.Create(ctx, *chat)
}

func (r *chatRepository) GetChat(ctx context.Context, id string) (*model.Chat, error) {
	chat, err := r.chats.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListChats(ctx context.Context, cursor string, limit int) (store.Page[model.Chat], error) {
	return r.chats.List(ctx, cursor, limit)
}

func (r *chatRepository) DeleteChat(ctx context.Context, id string) (bool, error) {
	return r.chats.Delete(ctx, id)
}

func (r *chatRepository) DeleteChats(ctx context.Context, ids []string) (int, error) {
	return r.chats.DeleteMany(ctx, ids)
}

func (r *chatRepository) AppendMessage(ctx context.Context, chatID string, msg model.ChatMessage) error {
	_, err := r.chats.Update(ctx, chatID, func(chat *model.Chat) error {
		chat.Messages = append(chat.Messages, msg)
		return nil
	})
	return err
}
