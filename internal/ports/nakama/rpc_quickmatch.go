package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// quickMatchRequest optionally pins the modes of the match to find or create.
type quickMatchRequest struct {
	GameMode      string `json:"game_mode"`
	PlacementMode string `json:"placement_mode"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcPeerToken, RpcGetPeerToken)
}

func quickMatchQuery(req quickMatchRequest) string {
	query := fmt.Sprintf("+label.%s:>=1 +label.game:%s +label.phase:lobby", MatchLabelKey_OpenSeats, MatchLabelGame)
	if req.GameMode != "" {
		query += " +label.game_mode:" + req.GameMode
	}
	if req.PlacementMode != "" {
		query += " +label.placement_mode:" + req.PlacementMode
	}
	return query
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req quickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
		}
	}

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 1 // one player waiting for an opponent

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery(req))
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	params := map[string]interface{}{}
	if req.GameMode != "" {
		params["game_mode"] = req.GameMode
	}
	if req.PlacementMode != "" {
		params["placement_mode"] = req.PlacementMode
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameWordCircuit, params)
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
