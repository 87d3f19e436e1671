package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcQuickMatch is the Nakama RPC id clients call to find or create a game.
const RpcQuickMatch = "quick_match"

// quickMatchRequest is the RPC payload a client sends to open or join a
// board. Resolving game/generator/board/seed happens here rather than via
// an in-match OPEN message, since Nakama match creation takes its params
// up front (see matchParams in match_handler.go).
type quickMatchRequest struct {
	RoomName  string `json:"roomName"`
	Game      string `json:"game"`
	Generator string `json:"generator"`
	Board     string `json:"board"`
	Seed      string `json:"seed"`
}

// quickMatchResponse is the RPC reply: the match to connect to and whether
// it was just created.
type quickMatchResponse struct {
	MatchID string `json:"matchId"`
	IsNew   bool   `json:"isNew"`
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req quickMatchRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid quick_match payload", 3)
	}

	query := "+label.open:T label.game:" + req.Game
	minSize, maxSize := 1, 64
	matches, err := nk.MatchList(ctx, 10, true, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("quick_match: MatchList error: %v", err)
		return "", err
	}
	if len(matches) > 0 {
		resp, _ := json.Marshal(quickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
		return string(resp), nil
	}

	params := map[string]interface{}{
		"roomName":  req.RoomName,
		"game":      req.Game,
		"generator": req.Generator,
		"board":     req.Board,
		"seed":      req.Seed,
	}
	matchID, err := nk.MatchCreate(ctx, MatchName, params)
	if err != nil {
		logger.Error("quick_match: MatchCreate error: %v", err)
		return "", err
	}

	resp, _ := json.Marshal(quickMatchResponse{MatchID: matchID, IsNew: true})
	return string(resp), nil
}
