package repository

import (
	"context"

	"leverage/internal/model"
	"leverage/internal/seed"
	"leverage/internal/store"
	"leverage/pkg/logger"
)

// UserRepository 用户数据访问层
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, cursor string, limit int) (store.Page[model.User], error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	DeleteUsers(ctx context.Context, ids []string) (int, error)
}

type userRepository struct {
	users *store.Collection[model.User]
}

func NewUserRepository(backend store.Backend, opts store.Options, logger logger.Logger) UserRepository {
	return &userRepository{
		users: store.NewCollection(backend, model.CollectionUsers, seed.Users, opts, logger),
	}
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.users.Create(ctx, *user)
}

func (r *userRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := r.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, cursor string, limit int) (store.Page[model.User], error) {
	return r.users.List(ctx, cursor, limit)
}

func (r *userRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	return r.users.Delete(ctx, id)
}

func (r *userRepository) DeleteUsers(ctx context.Context, ids []string) (int, error) {
	return r.users.DeleteMany(ctx, ids)
}
