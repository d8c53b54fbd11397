package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnavshah/dutyboard-api-go/internal/config"
	"github.com/arnavshah/dutyboard-api-go/internal/logging"
	"github.com/arnavshah/dutyboard-api-go/pkg/database"
	"github.com/arnavshah/dutyboard-api-go/pkg/handlers"
	"github.com/arnavshah/dutyboard-api-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	port    string
)

var rootCmd = &cobra.Command{
	Use:   "dutyboard-server",
	Short: "Duty board API: live shift state, fairness scores and trend anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logging.Init(verbose, cfg.LogDir); err != nil {
			return err
		}
		if port != "" {
			cfg.Port = port
		}

		if cfg.GinMode == "" {
			gin.SetMode(gin.ReleaseMode)
		} else {
			gin.SetMode(cfg.GinMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := database.InitDB(ctx, cfg)
		if err != nil {
			return err
		}

		h := handlers.New(cfg, db, metrics.NewPrometheus(nil, ""))
		if err := h.Auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Warn().Err(err).Msg("Could not ensure default operator")
		}

		r := handlers.NewRouter(h, "Duty Board API (Go Version)")

		log.Info().Str("port", cfg.Port).Str("version", handlers.Version).Msg("Server starting")
		if err := r.Run(":" + cfg.Port); err != nil {
			return fmt.Errorf("could not run server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
