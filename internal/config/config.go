package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"wordcircuit/internal/domain"
)

// GameConfig is the server-side tuning of matches, bots and peer tokens.
type GameConfig struct {
	DefaultGameMode      string `json:"default_game_mode"`
	DefaultPlacementMode string `json:"default_placement_mode"`
	DictionaryPath       string `json:"dictionary_path"`
	BotIdentitiesPath    string `json:"bot_identities_path"`

	// BotLevel is the difficulty of auto-filled bots ("standard" or "quick").
	BotLevel string `json:"bot_level"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	BotMinDelaySeconds      int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int `json:"bot_max_delay_seconds"`
	// BotStepBudget is the number of search units a bot runs per match tick.
	BotStepBudget int `json:"bot_step_budget"`

	// SearchMaxAnchors and SearchSampleSize override the level's search limits when positive.
	SearchMaxAnchors int `json:"search_max_anchors"`
	SearchSampleSize int `json:"search_sample_size"`

	PeerTokenIssuer     string `json:"peer_token_issuer"`
	PeerTokenTTLSeconds int    `json:"peer_token_ttl_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Defaults returns the configuration used when no file is loaded.
func Defaults() GameConfig {
	return GameConfig{
		DefaultGameMode:         "DYNAMIC",
		DefaultPlacementMode:    "ACROSTIC",
		DictionaryPath:          "data/words.txt",
		BotIdentitiesPath:       "data/bot_identities.json",
		BotLevel:                "standard",
		BotAutoFillDelaySeconds: 5,
		BotMinDelaySeconds:      1,
		BotMaxDelaySeconds:      3,
		BotStepBudget:           256,
		PeerTokenIssuer:         "wordcircuit",
		PeerTokenTTLSeconds:     3600,
	}
}

// Parse decodes a config document. Missing or zero fields take their defaults.
func Parse(data []byte) (*GameConfig, error) {
	c := Defaults()
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.fillDefaults()
	if _, err := c.Modes(); err != nil {
		return nil, err
	}
	if c.BotMaxDelaySeconds < c.BotMinDelaySeconds {
		return nil, fmt.Errorf("bot_max_delay_seconds %d is below bot_min_delay_seconds %d", c.BotMaxDelaySeconds, c.BotMinDelaySeconds)
	}
	return &c, nil
}

func (c *GameConfig) fillDefaults() {
	d := Defaults()
	if c.DictionaryPath == "" {
		c.DictionaryPath = d.DictionaryPath
	}
	if c.BotIdentitiesPath == "" {
		c.BotIdentitiesPath = d.BotIdentitiesPath
	}
	if c.BotAutoFillDelaySeconds <= 0 {
		c.BotAutoFillDelaySeconds = d.BotAutoFillDelaySeconds
	}
	if c.BotMinDelaySeconds <= 0 {
		c.BotMinDelaySeconds = d.BotMinDelaySeconds
	}
	if c.BotMaxDelaySeconds <= 0 {
		c.BotMaxDelaySeconds = d.BotMaxDelaySeconds
	}
	if c.BotStepBudget <= 0 {
		c.BotStepBudget = d.BotStepBudget
	}
	if c.PeerTokenIssuer == "" {
		c.PeerTokenIssuer = d.PeerTokenIssuer
	}
	if c.PeerTokenTTLSeconds <= 0 {
		c.PeerTokenTTLSeconds = d.PeerTokenTTLSeconds
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or the defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		d := Defaults()
		return &d
	}
	return cfg
}

// Modes returns the default modes of a new match.
func (c *GameConfig) Modes() (domain.Modes, error) {
	return domain.ParseModes(c.DefaultGameMode, c.DefaultPlacementMode)
}

// PeerTokenTTL returns the lifetime of relay room tokens.
func (c *GameConfig) PeerTokenTTL() time.Duration {
	return time.Duration(c.PeerTokenTTLSeconds) * time.Second
}
