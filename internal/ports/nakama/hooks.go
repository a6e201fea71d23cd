package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// BeforeAuthenticateDevice forces a new user to be created on every
// device-auth attempt, so the lobby never reuses a stale guest account.
func BeforeAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, in *api.AuthenticateDeviceRequest) (*api.AuthenticateDeviceRequest, error) {
	newDeviceID := uuid.New().String()
	logger.Info("replacing device id %q with %q to force new user creation", in.Account.Id, newDeviceID)
	in.Account.Id = newDeviceID
	in.Create = &wrapperspb.BoolValue{Value: true}
	return in, nil
}

// AfterAuthenticateDevice assigns a friendly display name to a newly
// created account; it carries no gameplay or economy logic.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}
	userID, err := extractUserIDFromToken(out.Token)
	if err != nil {
		logger.Error("after authenticate device: extract user id: %v", err)
		return err
	}

	displayName := generateFriendlyName()
	if err := nk.AccountUpdateId(ctx, userID, displayName, nil, displayName, "", "", "", ""); err != nil {
		logger.Error("after authenticate device: update account %s: %v", userID, err)
	}
	return nil
}

func extractUserIDFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode token payload: %w", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return "", fmt.Errorf("unmarshal token claims: %w", err)
	}
	uid, ok := claims["uid"].(string)
	if !ok {
		return "", fmt.Errorf("token claims missing uid")
	}
	return uid, nil
}

var friendlyAdjectives = []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
var friendlyNouns = []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

func generateFriendlyName() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	adj := friendlyAdjectives[rng.Intn(len(friendlyAdjectives))]
	noun := friendlyNouns[rng.Intn(len(friendlyNouns))]
	num := rng.Intn(9000) + 1000
	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
