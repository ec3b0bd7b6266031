package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/pages-api/internal/config"
	"github.com/deppfellow/pages-api/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "pages",
	Short:         "Pages API server and admin tooling",
	Long:          `pages serves the hierarchical pages API and carries the commands used to operate it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		tokenCmd(),
		userCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// app is what every command needs before doing work: the loaded config
// and the application logger.
type app struct {
	cfg           *config.Config
	log           *zerolog.Logger
	loggerService *logger.LoggerService
}

func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return &app{
		cfg:           cfg,
		log:           &log,
		loggerService: loggerService,
	}, nil
}

func (a *app) close() {
	a.loggerService.Shutdown()
}
