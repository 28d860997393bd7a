package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/console"
	"github.com/MickeyElders/pi-control-program/internal/logger"
)

const configDir = "configs"

// reportInterval is how often the running session's derived state is logged.
const reportInterval = 5 * time.Second

func main() {
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	sess := console.NewSession(console.SessionConfig{
		APIBase:      cfg.APIBase,
		PollInterval: cfg.PollInterval,
		LiftSpeedMMS: cfg.GPIO.LiftSpeedMMS,
		LiftMaxMM:    cfg.GPIO.LiftMaxMM,
	}, log.Named("session"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sess.Run(ctx)
	log.Infow("console polling", "api_base", cfg.APIBase, "interval", cfg.PollInterval)

	go reportLoop(ctx, sess, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down console...")
	cancel()
}

// reportLoop periodically logs a one-line summary of the derived state.
func reportLoop(ctx context.Context, sess *console.Session, log *logger.Logger) {
	tick := time.NewTicker(reportInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			stats := sess.ClientStats()
			mm, pct := sess.LiftEstimate()
			log.Infow("session",
				"online", sess.Online(),
				"heartbeat", sess.HeartbeatOK(),
				"alarms", len(sess.Alarms()),
				"polls_ok", stats.Successes,
				"polls_failed", stats.Failures,
				"lift_mm", mm,
				"lift_pct", pct,
			)
		}
	}
}
