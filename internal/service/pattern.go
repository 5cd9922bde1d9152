package service

import (
	"context"

	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/store"
)

// PatternService 模式目录只读访问
type PatternService interface {
	ListPatterns(ctx context.Context, cursor string, limit int) (store.Page[model.Pattern], error)
	GetPattern(ctx context.Context, id string) (*model.Pattern, error)
}

type patternService struct {
	patterns repository.PatternRepository
}

func NewPatternService(patterns repository.PatternRepository) PatternService {
	return &patternService{patterns: patterns}
}

func (s *patternService) ListPatterns(ctx context.Context, cursor string, limit int) (store.Page[model.Pattern], error) {
	return s.patterns.ListPatterns(ctx, cursor, limit)
}

func (s *patternService) GetPattern(ctx context.Context, id string) (*model.Pattern, error) {
	return s.patterns.GetPattern(ctx, id)
}
