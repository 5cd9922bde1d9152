package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leverage/internal/config"
	"leverage/internal/detector"
	"leverage/internal/errs"
	"leverage/internal/handler"
	"leverage/internal/metrics"
	"leverage/internal/model"
	"leverage/internal/repository"
	"leverage/internal/seed"
	"leverage/internal/service"
	"leverage/internal/store"
	"leverage/test/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testServer struct {
	handler http.Handler
	fetcher *mocks.MockTreeFetcher
}

func newTestServer(t *testing.T, serverCfg config.ConfigServer) *testServer {
	gin.SetMode(gin.TestMode)
	log := mocks.NewMockLogger()
	backend, err := store.NewMemLevelDB(log)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	opts := store.Options{}
	projects := repository.NewProjectRepository(backend, opts, log)
	patterns := repository.NewPatternRepository(backend, opts, log)
	components := repository.NewComponentRepository(backend, opts, log)
	users := repository.NewUserRepository(backend, opts, log)
	chats := repository.NewChatRepository(backend, opts, log)

	fetcher := mocks.NewMockTreeFetcher(gomock.NewController(t))
	m := metrics.New()
	analysis := service.NewAnalysisService(
		projects, fetcher,
		detector.New(detector.StaticPatterns(seed.PatternsByProject()), config.DefaultIgnorePatterns),
		config.ConfigAnalysis{SingleFlight: true, LeaseTTL: time.Minute},
		m, log,
	)
	userService := service.NewUserService(users, log)
	srv := NewServer(serverCfg, Handlers{
		Project: handler.NewProjectHandler(service.NewProjectService(projects, log), analysis, log),
		Catalog: handler.NewCatalogHandler(service.NewPatternService(patterns), service.NewComponentService(patterns, components, log), log),
		Demo:    handler.NewDemoHandler(userService, service.NewChatService(chats), log),
	}, userService, m, log)
	return &testServer{handler: srv.Handler(), fetcher: fetcher}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func defaultServerConfig() config.ConfigServer {
	return config.DefaultConfig().Server
}

func TestServer_ProjectLifecycle(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())

	w, env := s.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page store.Page[model.Project]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)

	w, env = s.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "demo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid_input", env.Code)

	w, env = s.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "demo", "repoUrl": "https://github.com/acme/demo"})
	require.Equal(t, http.StatusOK, w.Code)
	var project model.Project
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, model.ProjectStatusPending, project.Status)

	s.fetcher.EXPECT().FetchTree(gomock.Any(), "https://github.com/acme/demo").Return([]model.TreeEntry{
		{Path: "cmd/server/main.go", Kind: model.NodeTypeBlob},
		{Path: "internal/auth/jwt.go", Kind: model.NodeTypeBlob},
	}, nil)
	w, env = s.do(t, http.MethodPost, "/api/projects/"+project.ID+"/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report model.IngestionReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, []string{"cmd/server/main.go"}, report.EntryPoints)
	assert.Empty(t, report.Patterns)

	w, env = s.do(t, http.MethodGet, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, model.ProjectStatusCompleted, project.Status)
	require.NotNil(t, project.Analysis)

	w, env = s.do(t, http.MethodGet, "/api/projects/proj_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/projects/proj_missing/analyze", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_AnalyzeFailure(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())
	s.fetcher.EXPECT().FetchTree(gomock.Any(), gomock.Any()).
		Return(nil, &errs.UpstreamError{Status: http.StatusNotFound, Body: "Not Found"})

	w, env := s.do(t, http.MethodPost, "/api/projects/proj_vibesdk/analyze", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "analysis_failed", env.Code)
	assert.Contains(t, env.Error, "status 404")

	_, env = s.do(t, http.MethodGet, "/api/projects/proj_vibesdk", nil)
	var project model.Project
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, model.ProjectStatusFailed, project.Status)
	assert.NotEmpty(t, project.LastError)
}

func TestServer_Pagination(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())

	w, env := s.do(t, http.MethodGet, "/api/projects?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page store.Page[model.Project]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	require.NotEmpty(t, page.NextCursor)

	w, env = s.do(t, http.MethodGet, "/api/projects?limit=1&cursor="+page.NextCursor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var next store.Page[model.Project]
	require.NoError(t, json.Unmarshal(env.Data, &next))
	require.Len(t, next.Items, 1)
	assert.NotEqual(t, page.Items[0].ID, next.Items[0].ID)
	assert.Empty(t, next.NextCursor)

	w, env = s.do(t, http.MethodGet, "/api/projects?cursor=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_input", env.Code)
}

func TestServer_CatalogAndComponents(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())

	w, env := s.do(t, http.MethodGet, "/api/patterns/patt_auth_flow", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pattern model.Pattern
	require.NoError(t, json.Unmarshal(env.Data, &pattern))
	assert.Equal(t, "proj_vibesdk", pattern.ProjectID)

	w, _ = s.do(t, http.MethodPost, "/api/components", map[string]string{"patternId": "patt_missing", "name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/components", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/components", map[string]string{"patternId": "patt_auth_flow", "name": "AuthCard"})
	require.Equal(t, http.StatusOK, w.Code)
	var component model.ComponentSpec
	require.NoError(t, json.Unmarshal(env.Data, &component))
	assert.Equal(t, "proj_vibesdk", component.ProjectID)

	w, _ = s.do(t, http.MethodGet, "/api/components/"+component.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_SessionOwnsCreatedProjects(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())

	w, _ := s.do(t, http.MethodGet, "/api/auth/session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/auth/session", map[string]string{"name": "Dana"})
	require.Equal(t, http.StatusOK, w.Code)
	var user model.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, user.ID, w.Header().Get(handler.SessionHeader))

	w, env = s.do(t, http.MethodGet, "/api/auth/session", nil, handler.SessionHeader, user.ID)
	require.Equal(t, http.StatusOK, w.Code)

	_, env = s.do(t, http.MethodPost, "/api/projects",
		map[string]string{"name": "owned", "repoUrl": "https://github.com/a/b"},
		handler.SessionHeader, user.ID)
	var project model.Project
	require.NoError(t, json.Unmarshal(env.Data, &project))
	assert.Equal(t, user.ID, project.OwnerID)
}

func TestServer_DemoRoutes(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())

	w, env := s.do(t, http.MethodPost, "/api/chats/c1/messages", map[string]string{"userId": "u1", "text": " hey "})
	require.Equal(t, http.StatusOK, w.Code)
	var msg model.ChatMessage
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "hey", msg.Text)

	w, _ = s.do(t, http.MethodPost, "/api/chats/nope/messages", map[string]string{"userId": "u1", "text": "hey"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/chats/c1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var messages []model.ChatMessage
	require.NoError(t, json.Unmarshal(env.Data, &messages))
	assert.Len(t, messages, 2)

	w, _ = s.do(t, http.MethodPost, "/api/users/deleteMany", map[string][]string{"ids": {}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/users/deleteMany", map[string][]string{"ids": {"u1", "zz"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deletedCount":1,"ids":["u1","zz"]}`, string(env.Data))

	w, env = s.do(t, http.MethodDelete, "/api/chats/c1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"c1","deleted":true}`, string(env.Data))
}

func TestServer_FallbackRoutesAndMetrics(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())

	w, env := s.do(t, http.MethodGet, "/api/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "endpoint not found", env.Error)

	w, _ = s.do(t, http.MethodPut, "/api/projects", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leverage_http_requests_total")
}

func TestServer_RateLimit(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	s := newTestServer(t, cfg)

	w, _ := s.do(t, http.MethodGet, "/api/patterns", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env := s.do(t, http.MethodGet, "/api/patterns", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", env.Code)

	// health is outside the limited group
	w, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t, defaultServerConfig())
	w, _ := s.do(t, http.MethodOptions, "/api/projects", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), handler.SessionHeader)
}
