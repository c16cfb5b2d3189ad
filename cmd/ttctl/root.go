package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/yigit/lecturetable/internal/app/repositories"
	"github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/config"
	"github.com/yigit/lecturetable/internal/pkg/helpers"
	"github.com/yigit/lecturetable/internal/pkg/lectureapi"
	"github.com/yigit/lecturetable/internal/pkg/logger"
)

type rootOptions struct {
	configPath string
	apiBase    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ttctl",
		Short:         "Lecture catalog and timetable tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logger.WarnLevel
			if opts.verbose {
				level = logger.DebugLevel
			}
			logger.Configure(logger.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()})
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "config file (missing file uses defaults)")
	root.PersistentFlags().StringVar(&opts.apiBase, "api", "", "lecture API base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newCoursesCmd(opts), newShareCmd(), newRenderCmd(opts))
	return root
}

// loadConfig reads the config and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.apiBase != "" {
		cfg.LectureAPI.BaseURL = o.apiBase
	}
	return cfg, nil
}

// loadCatalog fetches the catalog once into a fresh catalog service.
func (o *rootOptions) loadCatalog(ctx context.Context) (*config.Config, *services.CatalogService, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log := logger.Component("ttctl")
	client := lectureapi.NewClient(cfg.LectureAPI.BaseURL, helpers.ParseDuration(cfg.LectureAPI.Timeout, 10*time.Second), log)
	catalog := services.NewCatalogService(client, repositories.NewMemoryCatalogSnapshotRepository(), cfg.Catalog.BatchSize, log)
	if _, err := catalog.Refresh(ctx); err != nil {
		return nil, nil, err
	}
	return cfg, catalog, nil
}
