package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ykarpov/go-vault-sync/internal/client"
	"github.com/ykarpov/go-vault-sync/internal/config"
	"github.com/ykarpov/go-vault-sync/internal/logger"
	"github.com/ykarpov/go-vault-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	log := logger.NewClientLogger("vault-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	app, err := client.NewApp(ctx, cfg, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
