package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"leverage/internal/errs"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/store"
	"leverage/internal/utils"
	"leverage/pkg/logger"
)

const componentVersion = "1.0.0"

var componentTemplate = template.Must(template.New("component").Funcs(template.FuncMap{
	"escapeLT": func(s string) string { return strings.ReplaceAll(s, "<", "&lt;") },
}).Parse(`
import React from 'react';
import { Card, CardHeader, CardTitle, CardContent } from '@/components/ui/card';
export const {{.Name}} = ({ title }) => (
  <Card>
    <CardHeader><CardTitle>{title}</CardTitle></CardHeader>
    <CardContent>
      <p>This is a generated component based on the "{{.Title}}" pattern.</p>
      <pre className="bg-muted p-2 rounded-md mt-2 text-xs"><code>{{escapeLT .Snippet}}</code></pre>
    </CardContent>
  </Card>
);
`))

// GenerateComponentRequest 组件生成请求
type GenerateComponentRequest struct {
	PatternID string `json:"patternId"`
	Name      string `json:"name"`
}

// ComponentService 基于模式生成组件
type ComponentService interface {
	Generate(ctx context.Context, req *GenerateComponentRequest) (*model.ComponentSpec, error)
	GetComponent(ctx context.Context, id string) (*model.ComponentSpec, error)
	ListComponents(ctx context.Context, cursor string, limit int) (store.Page[model.ComponentSpec], error)
}

type componentService struct {
	patterns   repository.PatternRepository
	components repository.ComponentRepository
	logger     logger.Logger
	now        func() time.Time
}

func NewComponentService(patterns repository.PatternRepository, components repository.ComponentRepository, logger logger.Logger) ComponentService {
	return &componentService{
		patterns:   patterns,
		components: components,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *componentService) Generate(ctx context.Context, req *GenerateComponentRequest) (*model.ComponentSpec, error) {
	patternID := strings.TrimSpace(req.PatternID)
	name := strings.TrimSpace(req.Name)
	if patternID == "" || name == "" {
		return nil, errs.NewMissingParamError("patternId and name")
	}

	pattern, err := s.patterns.GetPattern(ctx, patternID)
	if err != nil {
		return nil, err
	}

	var source bytes.Buffer
	if err := componentTemplate.Execute(&source, struct {
		Name    string
		Title   string
		Snippet string
	}{name, pattern.Title, pattern.Snippet}); err != nil {
		return nil, fmt.Errorf("failed to render component: %w", err)
	}

	id, err := utils.NewPrefixedID(model.ComponentIDPrefix)
	if err != nil {
		return nil, err
	}
	component := &model.ComponentSpec{
		ID:             id,
		PatternID:      pattern.ID,
		ProjectID:      pattern.ProjectID,
		Name:           name,
		SourceTemplate: source.String(),
		PropsSchema:    map[string]string{"title": "string"},
		CreatedAt:      s.now().UnixMilli(),
		ExportFormats:  []model.ExportFormat{model.ExportFormatSnippet, model.ExportFormatZip},
		Version:        componentVersion,
	}
	if err := s.components.CreateComponent(ctx, component); err != nil {
		return nil, err
	}
	s.logger.Info("component: generated %s from pattern %s", id, pattern.ID)
	return component, nil
}

func (s *componentService) GetComponent(ctx context.Context, id string) (*model.ComponentSpec, error) {
	return s.components.GetComponent(ctx, id)
}

func (s *componentService) ListComponents(ctx context.Context, cursor string, limit int) (store.Page[model.ComponentSpec], error) {
	return s.components.ListComponents(ctx, cursor, limit)
}
