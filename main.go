package main

import (
	"flag"
	"log"

	"navtools/internal/assets"
	"navtools/internal/audit"
	"navtools/internal/config"
	"navtools/internal/database"
	"navtools/internal/router"
	"navtools/internal/token"
	"navtools/pkg/extract"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := database.Seed(db, cfg.Admin); err != nil {
		logger.Fatal("seed database", zap.Error(err))
	}

	idx, err := assets.New(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Fatal("start asset index", zap.Error(err))
	}
	defer idx.Close()

	r := router.Setup(router.Deps{
		Config:    cfg,
		DB:        db,
		Log:       logger,
		Tokens:    token.NewService(cfg.JWT),
		Audit:     audit.NewRecorder(logger),
		Assets:    idx,
		Extractor: extract.New(),
	})

	logger.Info("server starting", zap.String("address", cfg.Server.Address))
	if err := r.Run(cfg.Server.Address); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
