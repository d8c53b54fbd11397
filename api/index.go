package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/dutyboard-api-go/internal/config"
	"github.com/arnavshah/dutyboard-api-go/internal/logging"
	"github.com/arnavshah/dutyboard-api-go/pkg/database"
	"github.com/arnavshah/dutyboard-api-go/pkg/handlers"
	"github.com/arnavshah/dutyboard-api-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var r *gin.Engine

func init() {
	// Serverless instances have no writable log directory
	_ = logging.Init(false, "")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.InitDB(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect database")
	}

	h := handlers.New(cfg, db, metrics.NewPrometheus(nil, ""))
	_ = h.Auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword)

	gin.SetMode(gin.ReleaseMode)
	r = handlers.NewRouter(h, "Duty Board API (Go Version on Vercel)")
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
