package domain

import "testing"

func TestCardString(t *testing.T) {
	c := Card{Rank: Rank7, Suit: Hearts}
	if got := c.String(); got != "♥7" {
		t.Errorf("String() = %q, want %q", got, "♥7")
	}
	big := Card{Rank: BigJoker, Suit: NoSuit}
	if got := big.String(); got != "jokerBig" {
		t.Errorf("String() = %q, want %q", got, "jokerBig")
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	cards := []Card{
		{Rank: Rank3, Suit: Spades},
		{Rank: RankA, Suit: Diamonds},
		{Rank: Rank2, Suit: Clubs},
		{Rank: SmallJoker, Suit: NoSuit},
		{Rank: BigJoker, Suit: NoSuit},
	}
	for _, c := range cards {
		s := c.String()
		got, err := ParseCard(s)
		if err != nil {
			t.Fatalf("ParseCard(%q) error: %v", s, err)
		}
		if got != c {
			t.Errorf("ParseCard(%q) = %+v, want %+v", s, got, c)
		}
	}
}

func TestParseCardInvalid(t *testing.T) {
	if _, err := ParseCard("not a card"); err == nil {
		t.Error("expected error for invalid card string")
	}
}

func TestIsJoker(t *testing.T) {
	if !(Card{Rank: SmallJoker}).IsJoker() {
		t.Error("SmallJoker should be a joker")
	}
	if !(Card{Rank: BigJoker}).IsJoker() {
		t.Error("BigJoker should be a joker")
	}
	if (Card{Rank: RankA}).IsJoker() {
		t.Error("RankA should not be a joker")
	}
}

func TestIsHeartLevelWild(t *testing.T) {
	wild := Card{Rank: Rank5, Suit: Hearts}
	if !wild.IsHeartLevelWild(Rank5) {
		t.Error("heart 5 should be wild at level 5")
	}
	notSuit := Card{Rank: Rank5, Suit: Spades}
	if notSuit.IsHeartLevelWild(Rank5) {
		t.Error("spade 5 should not be wild at level 5")
	}
	notLevel := Card{Rank: Rank6, Suit: Hearts}
	if notLevel.IsHeartLevelWild(Rank5) {
		t.Error("heart 6 should not be wild at level 5")
	}
}

func TestParseRankTokenRoundTrip(t *testing.T) {
	for _, r := range []Rank{Rank3, RankJ, RankA, Rank2, SmallJoker, BigJoker} {
		tok := RankToken(r)
		got, ok := ParseRankToken(tok)
		if !ok {
			t.Fatalf("ParseRankToken(%q) not ok", tok)
		}
		if got != r {
			t.Errorf("ParseRankToken(%q) = %v, want %v", tok, got, r)
		}
	}
}
