package service

import (
	"context"
	"fmt"
	"strings"

	"leverage/internal/errs"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/store"
	"leverage/internal/utils"
	"leverage/pkg/logger"
)

// UserService 演示用户与会话
type UserService interface {
	ListUsers(ctx context.Context, cursor string, limit int) (store.Page[model.User], error)
	CreateUser(ctx context.Context, name string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	DeleteUsers(ctx context.Context, ids []string) (int, error)
	// Session resolves the user behind a session id. The session id is the
	// user id; there is no credential check.
	Session(ctx context.Context, sessionID string) (*model.User, error)
	// StartSession creates a demo user and returns it as the new session.
	StartSession(ctx context.Context, name string) (*model.User, error)
}

type userService struct {
	users  repository.UserRepository
	logger logger.Logger
}

func NewUserService(users repository.UserRepository, logger logger.Logger) UserService {
	return &userService{users: users, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context, cursor string, limit int) (store.Page[model.User], error) {
	return s.users.ListUsers(ctx, cursor, limit)
}

func (s *userService) CreateUser(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewMissingParamError("name")
	}
	id, err := utils.GenerateUUID()
	if err != nil {
		return nil, err
	}
	user := &model.User{ID: id, Name: name}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) (bool, error) {
	return s.users.DeleteUser(ctx, id)
}

func (s *userService) DeleteUsers(ctx context.Context, ids []string) (int, error) {
	return s.users.DeleteUsers(ctx, ids)
}

func (s *userService) Session(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, errs.NewMissingParamError("session")
	}
	return s.users.GetUser(ctx, sessionID)
}

func (s *userService) StartSession(ctx context.Context, name string) (*model.User, error) {
	if strings.TrimSpace(name) == "" {
		name = "Guest"
	}
	user, err := s.CreateUser(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.logger.Info("session: started for user %s", user.ID)
	return user, nil
}
