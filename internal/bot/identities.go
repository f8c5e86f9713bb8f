package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one entry of the bot roster.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"` // "standard" or "quick"
}

// BotLevel returns the parsed level, falling back to standard.
func (id BotIdentity) BotLevel() BotLevel {
	level, err := ParseBotLevel(id.Level)
	if err != nil {
		return BotLevelStandard
	}
	return level
}

var (
	rosterMu      sync.RWMutex
	roster        []BotIdentity
	rosterByID    map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot roster from the given path once.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		setRoster(identities)
	})
	return loadErr
}

func setRoster(identities []BotIdentity) {
	rosterMu.Lock()
	defer rosterMu.Unlock()
	roster = identities
	rosterByID = make(map[string]BotIdentity, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			rosterByID[identity.UserID] = identity
		}
	}
}

// ProvisionBots makes sure every roster entry with a device id has a Nakama
// account flagged with is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		rosterMu.RLock()
		identities := append([]BotIdentity(nil), roster...)
		rosterMu.RUnlock()

		for i := range identities {
			identity := &identities[i]
			if identity.DeviceID == "" {
				continue
			}
			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot": true,
				"level":  identity.Level,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Level: %s", identity.DisplayName, userID, identity.Level)
		}
		setRoster(identities)
	})
}

// GetBotIdentity returns a roster entry by index (mod roster size).
func GetBotIdentity(index int) BotIdentity {
	rosterMu.RLock()
	defer rosterMu.RUnlock()
	if len(roster) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			Username:    fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("Circuit Bot %d", index),
		}
	}
	return roster[index%len(roster)]
}

// GetBotDisplayName returns the display name for a bot id, or "" for non-bots.
func GetBotDisplayName(userID string) string {
	rosterMu.RLock()
	defer rosterMu.RUnlock()
	identity, ok := rosterByID[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// IsBot reports whether the given user id belongs to the roster.
func IsBot(userID string) bool {
	rosterMu.RLock()
	defer rosterMu.RUnlock()
	_, ok := rosterByID[userID]
	return ok
}
