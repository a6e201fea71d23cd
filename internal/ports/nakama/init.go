package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, auth hooks, and the match handler for the
// Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcFindMatchID, RpcFindMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc("test_create_match", RpcCreateMatchTest); err != nil {
		return err
	}

	if err := initializer.RegisterBeforeAuthenticateDevice(BeforeAuthenticateDevice); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameGuandan, NewMatch); err != nil {
		return err
	}

	logger.Info("Guandan Go module loaded.")
	return nil
}
