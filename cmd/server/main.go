package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jhchabran/qanda"
	"github.com/jhchabran/qanda/cmd"
	"github.com/jhchabran/qanda/slackhook"
	"github.com/jhchabran/qanda/sqlstore"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)

	// setup database
	store := sqlstore.New(cfg.DatabaseDriver, cfg.DSN())

	s := qanda.NewServer(&qanda.ServerConfig{Addr: cfg.Addr}, logger, store)

	if cfg.SlackWebhookURL != "" {
		ll := logger.With().Str("component", "slack").Logger()
		slackhook.New(cfg.SlackWebhookURL, ll).Register(s)
	}

	err = s.Prepare()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot prepare server")
	}
	defer store.Close()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("Shutting down")
		s.Stop()
	}()

	err = s.Start()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot start server")
	}
}
