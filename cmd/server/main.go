package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AngelCh415/funnel_go/internal/config"
	"github.com/AngelCh415/funnel_go/internal/httpx"
	"github.com/AngelCh415/funnel_go/internal/ingest"
	"github.com/AngelCh415/funnel_go/internal/store"
	"github.com/AngelCh415/funnel_go/internal/utils"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	inst := utils.NewInstruments()
	st, err := store.NewMemoryStore(cfg.CacheSize)
	if err != nil {
		logger.Error("store init", slog.String("err", err.Error()))
		os.Exit(1)
	}
	etl := ingest.NewETL(logger, inst)

	r := httpx.NewRouter(logger, etl, st, inst, httpx.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
