package main

import (
	"leverage/internal/config"
	"leverage/internal/daemon"
	"leverage/internal/detector"
	"leverage/internal/handler"
	"leverage/internal/job"
	"leverage/internal/metrics"
	"leverage/internal/repository"
	"leverage/internal/seed"
	"leverage/internal/server"
	"leverage/internal/service"
	"leverage/internal/store"
	"leverage/pkg/logger"
)

// repositories groups the typed repositories sharing one backend.
type repositories struct {
	projects   repository.ProjectRepository
	patterns   repository.PatternRepository
	components repository.ComponentRepository
	users      repository.UserRepository
	chats      repository.ChatRepository
}

func newRepositories(backend store.Backend, cfg *config.Config, log logger.Logger) repositories {
	opts := store.Options{PageSize: cfg.Store.PageSize, MaxPageSize: cfg.Store.MaxPageSize}
	return repositories{
		projects:   repository.NewProjectRepository(backend, opts, log),
		patterns:   repository.NewPatternRepository(backend, opts, log),
		components: repository.NewComponentRepository(backend, opts, log),
		users:      repository.NewUserRepository(backend, opts, log),
		chats:      repository.NewChatRepository(backend, opts, log),
	}
}

// newDaemon wires the HTTP server and background jobs.
func newDaemon(backend store.Backend, cfg *config.Config, log logger.Logger) *daemon.Daemon {
	repos := newRepositories(backend, cfg, log)
	m := metrics.New()

	fetcher := repository.NewGitHubFetcher(cfg.Fetcher, log)
	det := detector.New(detector.StaticPatterns(seed.PatternsByProject()), cfg.Analysis.IgnorePatterns)

	projectService := service.NewProjectService(repos.projects, log)
	analysisService := service.NewAnalysisService(repos.projects, fetcher, det, cfg.Analysis, m, log)
	patternService := service.NewPatternService(repos.patterns)
	componentService := service.NewComponentService(repos.patterns, repos.components, log)
	userService := service.NewUserService(repos.users, log)
	chatService := service.NewChatService(repos.chats)

	srv := server.NewServer(cfg.Server, server.Handlers{
		Project: handler.NewProjectHandler(projectService, analysisService, log),
		Catalog: handler.NewCatalogHandler(patternService, componentService, log),
		Demo:    handler.NewDemoHandler(userService, chatService, log),
	}, userService, m, log)

	var jobs []daemon.Job
	if cfg.Jobs.StaleCheckInterval > 0 {
		jobs = append(jobs, job.NewStaleAnalysisJob(repos.projects, m, log, cfg.Jobs.StaleCheckInterval, cfg.Analysis.StaleAfter))
	} else {
		log.Warn("stale analysis job disabled")
	}
	return daemon.NewDaemon(srv, log, jobs...)
}
