package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"wordcircuit/internal/app"
	"wordcircuit/internal/bot"
	"wordcircuit/internal/config"
	"wordcircuit/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const gameConfigPath = "data/game_config.json"

// InitModule wires RPCs, hooks and match handlers for Nakama runtime.
// A dictionary that cannot be loaded fails the module: matches cannot validate words without it.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	dict, err := loadDictionary(cfg.DictionaryPath)
	if err != nil {
		logger.Error("InitModule: %v", err)
		return err
	}
	logger.Info("InitModule: Loaded %d words from %s.", dict.Len(), cfg.DictionaryPath)

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if secret := env["wordcircuit_peer_token_secret"]; secret != "" {
		peerTokens = app.NewPeerTokenService(secret, cfg.PeerTokenIssuer, cfg.PeerTokenTTL())
	} else {
		logger.Warn("InitModule: wordcircuit_peer_token_secret not set, peer tokens disabled.")
	}

	if err := bot.LoadIdentities(cfg.BotIdentitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameWordCircuit, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(dict, cfg), nil
	}); err != nil {
		return err
	}

	logger.Info("WordCircuit Go module loaded at %s.", time.Now().UTC().Format(time.RFC3339))
	return nil
}

func loadDictionary(path string) (*domain.WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	dict, err := domain.LoadWordList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	if dict.Len() == 0 {
		return nil, fmt.Errorf("dictionary %s is empty", path)
	}
	return dict, nil
}
