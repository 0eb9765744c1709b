package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/exam-staffing-api/pkg/auth"
	"github.com/arnavshah/exam-staffing-api/pkg/config"
	"github.com/arnavshah/exam-staffing-api/pkg/database"
	"github.com/arnavshah/exam-staffing-api/pkg/handlers"
	"github.com/arnavshah/exam-staffing-api/pkg/logger"
	"github.com/arnavshah/exam-staffing-api/pkg/metrics"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	logg, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logg.Fatal("database init failed", zap.Error(err))
	}
	svc := auth.New(db, cfg, logg)
	if err := svc.EnsureAdminExists(); err != nil {
		logg.Error("could not ensure admin user", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(&handlers.Handler{
		DB:      db,
		Auth:    svc,
		Config:  cfg,
		Logger:  logg,
		Metrics: metrics.New(),
	})
}

// Handler is the entry point for the Vercel Go runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
