package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcFindMatch searches for an available match with open seats. If none
// is found, it creates a new one and returns its id either way.
//
// Payload: ignored (Guandan has a single match type).
// Returns: JSON-quoted match id string.
func RpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:>=1", MatchLabelKeyOpenSeats)
	minSize, maxSize := 0, 4

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: failed to list matches: %v", userId, err)
		return "", err
	}
	if len(matches) > 0 {
		matchId := matches[0].MatchId
		logger.Info("RpcFindMatch [User:%s]: found existing match %s", userId, matchId)
		return fmt.Sprintf("%q", matchId), nil
	}

	matchId, err := nk.MatchCreate(ctx, MatchNameGuandan, nil)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: failed to create match: %v", userId, err)
		return "", err
	}
	logger.Info("RpcFindMatch [User:%s]: created new match %s", userId, matchId)
	return fmt.Sprintf("%q", matchId), nil
}

// RpcCreateMatchTest is for integration testing only — it always creates
// a fresh match and returns its id, bypassing the find-or-create search.
func RpcCreateMatchTest(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	matchId, err := nk.MatchCreate(ctx, MatchNameGuandan, nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%q", matchId), nil
}
