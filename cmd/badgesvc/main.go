package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	config "github.com/avvvet/badge-services/configs"
	settings "github.com/avvvet/badge-services/internal/badgesvc/config"
	"github.com/avvvet/badge-services/internal/badgesvc/db"
	handlers "github.com/avvvet/badge-services/internal/badgesvc/handlers"
	"github.com/avvvet/badge-services/internal/badgesvc/metrics"
	"github.com/avvvet/badge-services/internal/badgesvc/service"
	"github.com/avvvet/badge-services/internal/badgesvc/store"
	"github.com/avvvet/badge-services/internal/badgesvc/store/memory"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "badge"

func init() {
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	cfg := settings.Load()
	config.Logging(SERVICE_NAME+"_service", cfg.LogDir, cfg.LogLevel)
	config.CreateUniqueInstance(SERVICE_NAME)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var (
		userStore     service.UserStore
		movementStore service.MovementStore
	)

	switch cfg.StoreDriver {
	case settings.StoreDriverMemory:
		users := memory.NewUserStore()
		userStore = users
		movementStore = memory.NewMovementStore(users)
		log.Warn("using in-memory store, data is lost on restart")
	default:
		// pg connection
		dbpool, err := db.Connect(context.Background(), cfg.DB)
		if err != nil {
			log.Fatalf("Failed to connect to DB %s: %v", cfg.DB.Redacted(), err)
		}
		defer dbpool.Close()
		log.Infof("pg connection established successfully %s", cfg.DB.Redacted())

		userStore = store.NewUserStore(dbpool, cfg.DB.QueryTimeout)
		movementStore = store.NewMovementStore(dbpool, cfg.DB.QueryTimeout)
	}

	userService := service.NewUserService(userStore, m)
	movementService := service.NewMovementService(movementStore, userService, m)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.AllowedOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))
	}

	// Init handlers and routes
	h := handlers.NewHandler(userService, movementService, reg, cfg.Port)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
