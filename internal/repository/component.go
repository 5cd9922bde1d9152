package repository

import (
	"context"

	"leverage/internal/model"
	"leverage/internal/store"
	"leverage/pkg/logger"
)

// ComponentRepository 生成组件数据访问层
type ComponentRepository interface {
	CreateComponent(ctx context.Context, component *model.ComponentSpec) error
	GetComponent(ctx context.Context, id string) (*model.ComponentSpec, error)
	ListComponents(ctx context.Context, cursor string, limit int) (store.Page[model.ComponentSpec], error)
}

type componentRepository struct {
	components *store.Collection[model.ComponentSpec]
}

func NewComponentRepository(backend store.Backend, opts store.Options, logger logger.Logger) ComponentRepository {
	return &componentRepository{
		components: store.NewCollection[model.ComponentSpec](backend, model.CollectionComponents, nil, opts, logger),
	}
}

func (r *componentRepository) CreateComponent(ctx context.Context, component *model.ComponentSpec) error {
	return r.components.Create(ctx, *component)
}

func (r *componentRepository) GetComponent(ctx context.Context, id string) (*model.ComponentSpec, error) {
	component, err := r.components.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *componentRepository) ListComponents(ctx context.Context, cursor string, limit int) (store.Page[model.ComponentSpec], error) {
	return r.components.List(ctx, cursor, limit)
}
