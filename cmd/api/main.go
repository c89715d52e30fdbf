package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "trip_planner/internal/adapters/http_server"
	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/app"
	"trip_planner/internal/shared"
	"trip_planner/internal/sources"
	mysqlrepo "trip_planner/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	cache, closeCache, err := sources.OpenCache(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cache init failed")
	}
	defer closeCache()

	clients := sources.ClientsFromConfig(cfg)
	set, err := sources.NewSet(clients, cache, cfg.ProviderTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("sources init failed")
	}
	planner := app.NewPlanner(set, cfg.FlightOrigin)
	trips := app.NewTripService(planner, mysqlrepo.New(db))

	// http
	srv := server.New(server.WithTimeout(cfg.HTTPTimeout))
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Planner: planner, Trips: trips, Sources: set, Photos: clients.Photos})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
