package repository

import (
	"context"

	"leverage/internal/model"
	"leverage/internal/seed"
	"leverage/internal/store"
	"leverage/pkg/logger"
)

// PatternRepository 模式目录数据访问层
type PatternRepository interface {
	GetPattern(ctx context.Context, id string) (*model.Pattern, error)
	ListPatterns(ctx context.Context, cursor string, limit int) (store.Page[model.Pattern], error)
}

type patternRepository struct {
	patterns *store.Collection[model.Pattern]
}

func NewPatternRepository(backend store.Backend, opts store.Options, logger logger.Logger) PatternRepository {
	return &patternRepository{
		patterns: store.NewCollection(backend, model.CollectionPatterns, seed.Patterns, opts, logger),
	}
}

func (r *patternRepository) GetPattern(ctx context.Context, id string) (*model.Pattern, error) {
	pattern, err := r.patterns.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *patternRepository) ListPatterns(ctx context.Context, cursor string, limit int) (store.Page[model.Pattern], error) {
	return r.patterns.List(ctx, cursor, limit)
}
