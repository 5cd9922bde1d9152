package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"leverage/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize every collection with its built-in records",
	Long:  `Seeds each collection that has never been seeded. Collections seeded before are left untouched, including ones whose seed records were deleted since.`,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	appLogger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	backend, err := store.Open(&cfg.Store, appLogger)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx := context.Background()
	repos := newRepositories(backend, cfg, appLogger)

	// the first read of a collection seeds it
	projects, err := repos.projects.AllProjects(ctx)
	if err != nil {
		return err
	}
	if _, err := repos.patterns.ListPatterns(ctx, "", 1); err != nil {
		return err
	}
	if _, err := repos.components.ListComponents(ctx, "", 1); err != nil {
		return err
	}
	if _, err := repos.users.ListUsers(ctx, "", 1); err != nil {
		return err
	}
	if _, err := repos.chats.ListChats(ctx, "", 1); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "store %s at %s is seeded (%d projects)\n", cfg.Store.Driver, cfg.Store.DataDir, len(projects))
	return nil
}
