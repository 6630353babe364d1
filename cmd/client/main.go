package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/buildinfo"
	"github.com/dmitrijs2005/gophnotes/internal/client/cli"
	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/gateway"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/client/store"
	"github.com/dmitrijs2005/gophnotes/internal/client/subscription"
	"github.com/dmitrijs2005/gophnotes/internal/client/suggest"
	"github.com/dmitrijs2005/gophnotes/internal/client/ui"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewText(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	var (
		provider session.Provider
		notes    store.Store
		pinger   cli.Pinger
		backups  cli.Backuper
	)

	switch cfg.Mode {
	case config.ModeLocal:
		provider = session.NewLocalProvider()
		notes = store.NewMemory()

	default:
		api, err := client.NewGophNotesClient(cfg.ServerEndpointAddr)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer api.Close()

		provider = session.NewRemoteProvider(api)
		notes = store.NewRemote(api, logger)
		pinger, backups = api, api
	}

	generator, err := suggest.NewFromConfig(ctx, suggest.GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model}, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	controller := ui.New(
		session.NewWatcher(provider, logger),
		subscription.New(notes, logger),
		gateway.New(notes),
		generator,
		logger,
	)

	if backups == nil {
		backups = cli.NewFileBackup("backups", controller)
	}

	app := cli.NewApp(cfg, controller, pinger, backups, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
