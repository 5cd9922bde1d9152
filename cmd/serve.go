package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"leverage/internal/store"
)

const shutdownTimeout = 10 * time.Second

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address override, e.g. 127.0.0.1:8080")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}

	appLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	appLogger.Info("OS: %s, Arch: %s, App: %s, Version: %s, Starting...", osName, archName, appName, version)

	backend, err := store.Open(&cfg.Store, appLogger)
	if err != nil {
		appLogger.Error("failed to open store: %v", err)
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			appLogger.Error("failed to close store: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	d := newDaemon(backend, cfg, appLogger)
	d.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		appLogger.Info("received signal %s, shutting down", sig)
	case err = <-d.Errors():
		appLogger.Error("server failed: %v", err)
	}

	d.Stop(shutdownTimeout)
	return err
}
