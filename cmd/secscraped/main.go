package main

import (
	"context"
	"fmt"
	"log/slog"

	"secscrape-backend/lib/configutil"
	"secscrape-backend/lib/extractor"
	"secscrape-backend/lib/sqliteutil"
	"secscrape-backend/lib/telemetry"
	"secscrape-backend/lib/util/serviceutil"
	"secscrape-backend/services/httpapi"
	"secscrape-backend/services/scraper"
	"secscrape-backend/services/sessionstore"
	sessiondb "secscrape-backend/services/sessionstore/db"
)

type Config struct {
	Port      int                     `json:"port"`
	Database  string                  `json:"database"`
	Extractor extractor.ClientOptions `json:"extractor"`
	Scraper   scraper.Options         `json:"scraper"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Database == "" {
		config.Database = "secscrape.db"
	}

	database, err := sqliteutil.OpenDB(sessiondb.Schema, config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	defer database.Close()

	t, err := telemetry.SetupFromEnv(ctx, "secscraped")
	if err != nil {
		slog.Warn("telemetry disabled", "err", err)
	} else {
		defer t.Shutdown(context.Background())
	}

	store := sessionstore.NewStore(database)
	orchestrator := scraper.NewOrchestrator(
		store,
		extractor.NewClient(config.Extractor),
		config.Scraper,
	)

	app := httpapi.NewApp(httpapi.NewService(store, orchestrator))
	go func() {
		slog.Info("listening to http...", "port", config.Port)
		err := app.Listen(fmt.Sprintf("0.0.0.0:%d", config.Port))
		if err != nil {
			serviceutil.Fatal(fmt.Sprintf("failed to listen on port %d", config.Port), err)
		}
	}()

	<-ctx.Done()
	err = app.Shutdown()
	if err != nil {
		slog.Error("failed to shutdown http server", "err", err)
	}
}
