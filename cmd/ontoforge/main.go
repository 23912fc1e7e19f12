package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ontoforge/ontoforge-go/pkg/api"
	"github.com/ontoforge/ontoforge-go/pkg/config"
	"github.com/ontoforge/ontoforge-go/pkg/extraction"
	"github.com/ontoforge/ontoforge-go/pkg/metadatastore"
	"github.com/ontoforge/ontoforge-go/pkg/schedule"
	"github.com/ontoforge/ontoforge-go/utils"
)

// defaultPatterns seeds rule-based extraction until callers post their
// own pattern sets
var defaultPatterns = []extraction.Pattern{
	{Type: "Concept", Keywords: []string{"system", "process", "method", "model"}},
	{Type: "Agent", Keywords: []string{"user", "service", "component", "client"}},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.GetLogger().Error("failed to load configuration", err, utils.Component("main"))
		os.Exit(1)
	}

	logger := utils.GetLogger()
	logger.SetLevel(utils.ParseLogLevel(cfg.LogLevel))
	logger.SetFormat(cfg.LogFormat)
	logger.Info("starting ontoforge",
		utils.Component("main"),
		utils.String("environment", cfg.Environment),
		utils.String("domain", cfg.Domain),
	)

	store, err := metadatastore.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open metadata store", err, utils.Component("main"))
		os.Exit(1)
	}
	defer store.Close()

	service, err := api.NewService(cfg, store, nil, defaultPatterns, logger)
	if err != nil {
		logger.Error("failed to build refinement service", err, utils.Component("main"))
		os.Exit(1)
	}

	server, err := api.NewServer(service)
	if err != nil {
		logger.Error("failed to build api server", err, utils.Component("main"))
		os.Exit(1)
	}

	scheduler := schedule.NewScheduler(logger)
	if cfg.RefineCron != "" {
		err := scheduler.AddJob("periodic-refine", cfg.RefineCron, func(ctx context.Context) error {
			_, err := service.Refine(ctx, api.RefineRequest{Domain: cfg.Domain, Text: refreshDocument()})
			return err
		})
		if err != nil {
			logger.Error("failed to schedule periodic refinement", err, utils.Component("main"))
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Start(cfg.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		logger.Error("api server stopped", err, utils.Component("main"))
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", utils.Component("main"), utils.String("signal", sig.String()))
	}
}

// refreshDocument reads the periodic-refinement source document named
// by REFINE_SOURCE, or empty when unset
func refreshDocument() string {
	path := os.Getenv("REFINE_SOURCE")
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		utils.GetLogger().Warn("failed to read refinement source",
			utils.Component("main"), utils.String("path", path))
		return ""
	}
	return string(data)
}
