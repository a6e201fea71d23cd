package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

const (
	opStartGame    int64 = 1
	opHandSnapshot int64 = 103
)

func TestFullGameStart(t *testing.T) {
	clients := make([]*TestClient, 4)
	for i := 0; i < 4; i++ {
		clients[i] = NewTestClient(t)
		defer clients[i].Close()
	}
	t.Log("Created 4 clients")

	matchID := clients[0].FindAndJoinMatch(t)
	t.Logf("Client 0 created/joined match: %s", matchID)

	for i := 1; i < 4; i++ {
		_, err := clients[i].Socket.JoinMatch(context.Background(), nil, matchID, nil)
		if err != nil {
			t.Fatalf("Client %d failed to join match: %v", i, err)
		}
		t.Logf("Client %d joined match", i)
	}

	time.Sleep(1 * time.Second)

	t.Log("Client 0 sending StartGame...")
	_, err := clients[0].Socket.SendMatchState(context.Background(), matchID, opStartGame, []byte("{}"), nil)
	if err != nil {
		t.Fatalf("Failed to send StartGame: %v", err)
	}

	for i, c := range clients {
		t.Logf("Waiting for hand snapshot on Client %d...", i)
		data := c.WaitForMatchState(t, opHandSnapshot, 5*time.Second)

		var hand struct {
			Seat  int `json:"seat"`
			Cards []struct {
				Rank int `json:"Rank"`
				Suit int `json:"Suit"`
			} `json:"cards"`
		}
		if err := json.Unmarshal(data.Data, &hand); err != nil {
			t.Errorf("Client %d failed to unmarshal hand snapshot: %v", i, err)
			continue
		}
		if len(hand.Cards) != 27 {
			t.Errorf("Client %d expected 27 cards, got %d", i, len(hand.Cards))
		}
		t.Logf("Client %d received hand of %d cards", i, len(hand.Cards))
	}

	t.Log("TestPassed: match started successfully with 4 players.")
}
