package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"wordcircuit/internal/app"
	"wordcircuit/internal/domain"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// peerTokens signs relay room tokens; nil when no secret is configured.
var peerTokens *app.PeerTokenService

type peerTokenRequest struct {
	Room string `json:"room"`
}

// PeerTokenResponse admits the caller to a relay room.
type PeerTokenResponse struct {
	Room  string `json:"room"`
	Side  string `json:"side"`
	Token string `json:"token"`
}

// RpcGetPeerToken issues a relay token. Without a room a new one is opened and
// the caller plays side A; joining an existing room makes the caller side B.
func RpcGetPeerToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
	}
	if peerTokens == nil {
		return "", runtime.NewError("peer play is not configured", 14) // UNAVAILABLE
	}

	var req peerTokenRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
		}
	}

	side := domain.SideB
	if req.Room == "" {
		req.Room = uuid.NewString()
		side = domain.SideA
	} else if _, err := uuid.Parse(req.Room); err != nil {
		return "", runtime.NewError("invalid room id", 3)
	}

	token, err := peerTokens.Issue(req.Room, userID, side)
	if err != nil {
		logger.Error("RpcGetPeerToken: Failed to issue token for %s: %v", userID, err)
		return "", runtime.NewError("internal error", 13) // INTERNAL
	}

	resBytes, _ := json.Marshal(PeerTokenResponse{Room: req.Room, Side: side.String(), Token: token})
	return string(resBytes), nil
}
