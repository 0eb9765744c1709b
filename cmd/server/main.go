package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/exam-staffing-api/pkg/auth"
	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/database"
	"github.com/arnavshah/exam-staffing-api/pkg/handlers"
	"github.com/arnavshah/exam-staffing-api/pkg/logger"
	"github.com/arnavshah/exam-staffing-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logg, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logg.Fatal("database init failed", zap.Error(err))
	}

	svc := auth.New(db, cfg, logg)
	if err := svc.EnsureAdminExists(); err != nil {
		logg.Error("could not ensure admin user", zap.Error(err))
	}

	h := &handlers.Handler{
		DB:      db,
		Auth:    svc,
		Config:  cfg,
		Logger:  logg,
		Metrics: metrics.New(),
	}
	r := handlers.NewRouter(h)

	logg.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		logg.Fatal("could not run server", zap.Error(err))
	}
}
