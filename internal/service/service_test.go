package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leverage/internal/errs"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/store"
	"leverage/test/mocks"
)

func newMemBackend(t *testing.T) store.Backend {
	b, err := store.NewMemLevelDB(mocks.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestProjectService_CreateProject(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProjectRepository(newMemBackend(t), store.Options{}, mocks.NewMockLogger())
	svc := NewProjectService(repo, mocks.NewMockLogger())

	tests := []struct {
		name    string
		req     *CreateProjectRequest
		wantErr error
	}{
		{name: "缺少名称", req: &CreateProjectRequest{RepoURL: "https://github.com/a/b"}, wantErr: errs.ErrInvalidInput},
		{name: "缺少仓库地址", req: &CreateProjectRequest{Name: "a", RepoURL: "   "}, wantErr: errs.ErrInvalidInput},
		{name: "成功创建", req: &CreateProjectRequest{Name: " demo ", RepoURL: "https://github.com/a/b", OwnerID: "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, err := svc.CreateProject(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(project.ID, model.ProjectIDPrefix))
			assert.Equal(t, "demo", project.Name)
			assert.Equal(t, model.ProjectStatusPending, project.Status)
			assert.Equal(t, "u1", project.OwnerID)
			assert.Nil(t, project.Analysis)

			stored, err := svc.GetProject(ctx, project.ID)
			require.NoError(t, err)
			assert.Equal(t, project, stored)
		})
	}

	page, err := svc.ListProjects(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestComponentService_Generate(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend(t)
	patterns := repository.NewPatternRepository(backend, store.Options{}, mocks.NewMockLogger())
	components := repository.NewComponentRepository(backend, store.Options{}, mocks.NewMockLogger())
	svc := NewComponentService(patterns, components, mocks.NewMockLogger())

	_, err := svc.Generate(ctx, &GenerateComponentRequest{PatternID: "patt_auth_flow"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Generate(ctx, &GenerateComponentRequest{PatternID: "patt_missing", Name: "Card"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	pattern, err := patterns.GetPattern(ctx, "patt_ingestion_engine")
	require.NoError(t, err)

	component, err := svc.Generate(ctx, &GenerateComponentRequest{PatternID: pattern.ID, Name: "IngestionCard"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(component.ID, model.ComponentIDPrefix))
	assert.Equal(t, pattern.ProjectID, component.ProjectID)
	assert.Equal(t, "1.0.0", component.Version)
	assert.Equal(t, map[string]string{"title": "string"}, component.PropsSchema)
	assert.Contains(t, component.SourceTemplate, "export const IngestionCard")
	assert.Contains(t, component.SourceTemplate, `based on the "Repository Ingestion Engine" pattern`)
	assert.Contains(t, component.SourceTemplate, "Promise&lt;StructuredOutput>")

	stored, err := svc.GetComponent(ctx, component.ID)
	require.NoError(t, err)
	assert.Equal(t, component, stored)

	page, err := svc.ListComponents(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(repository.NewUserRepository(newMemBackend(t), store.Options{}, mocks.NewMockLogger()), mocks.NewMockLogger())

	_, err := svc.CreateUser(ctx, "  ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	user, err := svc.CreateUser(ctx, " Carol ")
	require.NoError(t, err)
	assert.Equal(t, "Carol", user.Name)

	session, err := svc.StartSession(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Guest", session.Name)

	resolved, err := svc.Session(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, resolved)

	_, err = svc.Session(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	n, err := svc.DeleteUsers(ctx, []string{"u1", "u2", user.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := svc.ListUsers(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, session.ID, page.Items[0].ID)
}

func TestChatService(t *testing.T) {
	ctx := context.Background()
	svc := NewChatService(repository.NewChatRepository(newMemBackend(t), store.Options{}, mocks.NewMockLogger()))

	messages, err := svc.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello", messages[0].Text)

	_, err = svc.SendMessage(ctx, "c1", "u1", "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = svc.SendMessage(ctx, "c1", "", "hi")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = svc.SendMessage(ctx, "missing", "u1", "hi")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	msg, err := svc.SendMessage(ctx, "c1", "u2", " hi there ")
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Text)
	assert.Equal(t, "c1", msg.ChatID)

	messages, err = svc.ListMessages(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, msg.ID, messages[1].ID)

	chat, err := svc.CreateChat(ctx, "Random")
	require.NoError(t, err)
	messages, err = svc.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	deleted, err := svc.DeleteChat(ctx, chat.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	n, err := svc.DeleteChats(ctx, []string{"c1", chat.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
