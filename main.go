package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/config"
	"github.com/yeremiapane/restaurant-backoffice/corte"
	"github.com/yeremiapane/restaurant-backoffice/database"
	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/router"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

const verifyTTL = 30 * time.Second

func init() {
	utils.InitLogger()

	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Infof("Warning: .env file not found or error loading: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}
	models.NoticeTTL = cfg.NoticeTTL

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	api := client.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	registry := session.NewRegistry(api, cfg.AdminUserIDs, verifyTTL)
	audit := services.NewAuditService(db)

	board := liveboard.NewBoard(api, cfg.SucursalID)
	hub := kds.NewHub()
	monitor := services.NewBoardMonitor(api, board, hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The background consumer runs on a service session when one is configured.
	var serviceGate *session.Gate
	if cfg.ServiceToken != "" || cfg.ServiceCookie != "" {
		serviceGate = session.NewGate(api, client.Credentials{Cookie: cfg.ServiceCookie, Token: cfg.ServiceToken}, nil)
	}
	monitor.Start(ctx, serviceGate)

	r := router.SetupRouter(router.Deps{
		Registry:   registry,
		History:    api,
		Catalog:    services.NewCatalogService(api, audit),
		Discounts:  services.NewDiscountService(api, cfg.SucursalID, audit),
		Monitor:    monitor,
		Hub:        hub,
		Corte:      corte.NewService(api, db),
		Audit:      audit,
		CORSOrigin: cfg.CORSOrigin,
		LoginRate:  cfg.LoginRate,
	})

	// Set trusted proxies
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Errorf("Setting trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	monitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}
}
