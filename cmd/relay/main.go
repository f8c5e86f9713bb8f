package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wordcircuit/internal/app"
	"wordcircuit/internal/config"
	"wordcircuit/internal/ports/relay"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := config.LoadGameConfig(getEnv("WORDCIRCUIT_CONFIG", "data/game_config.json")); err != nil {
		log.Warn().Err(err).Msg("using default game config")
	}
	cfg := config.GetGameConfig()

	secret := os.Getenv("WORDCIRCUIT_PEER_TOKEN_SECRET")
	if secret == "" {
		log.Fatal().Msg("WORDCIRCUIT_PEER_TOKEN_SECRET is required")
	}
	tokens := app.NewPeerTokenService(secret, cfg.PeerTokenIssuer, cfg.PeerTokenTTL())

	hub := relay.NewHub(log.With().Str("component", "hub").Logger())
	srv := &http.Server{
		Addr:              ":" + getEnv("PORT", "7360"),
		Handler:           relay.NewServer(hub, tokens, log.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("starting relay")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("relay exited")
	}
	log.Info().Msg("relay stopped")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
