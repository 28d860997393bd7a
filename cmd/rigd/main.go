package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/gpio"
	"github.com/MickeyElders/pi-control-program/internal/handlers"
	"github.com/MickeyElders/pi-control-program/internal/logger"
	"github.com/MickeyElders/pi-control-program/internal/phmeter"
	"github.com/MickeyElders/pi-control-program/internal/repository"
	"github.com/MickeyElders/pi-control-program/internal/repository/db"
	"github.com/MickeyElders/pi-control-program/internal/server"
	"github.com/MickeyElders/pi-control-program/internal/service"
	"github.com/MickeyElders/pi-control-program/internal/sysinfo"
)

const configDir = "configs"

func main() {
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	sqlDB, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DBPath)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctrl, err := gpio.NewController(cfg.GPIO)
	if err != nil {
		log.Fatalw("failed to init gpio", "err", err, "backend", cfg.GPIO.Backend)
	}
	defer func() {
		if cerr := ctrl.Close(); cerr != nil {
			log.Errorw("failed to release gpio lines", "err", cerr)
		}
	}()
	log.Infow("gpio ready", "backend", ctrl.Backend())

	// wire dependencies
	probe := phmeter.NewReader(cfg.PHMeter, log.Named("phmeter"))
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, ctrl, probe, sysinfo.NewSampler(), cfg)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services.Recorder.RestoreLiftEstimate(ctx)

	go probe.Run(ctx)
	go services.Recorder.Run(ctx, cfg.SampleInterval)

	srv := &server.Server{}
	go func() {
		// Shutdown makes Run return ErrServerClosed; that must not abort
		// the process or the GPIO release defers never run.
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
	log.Infow("control api listening", "port", cfg.Port)

	waitForShutdown(cancel, srv, log)
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
