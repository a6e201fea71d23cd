package domain

import (
	"math/rand"
	"testing"
)

func containsKind(plays []PlayInfo, kind Kind) bool {
	for _, p := range plays {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

func TestEnumeratePlaysFindsSinglesAndPairs(t *testing.T) {
	hand := []Card{
		{Rank: Rank7, Suit: Spades}, {Rank: Rank7, Suit: Clubs},
		{Rank: Rank9, Suit: Diamonds},
	}
	plays := EnumeratePlays(hand, Rank2)
	if !containsKind(plays, Single) {
		t.Error("expected at least one Single")
	}
	if !containsKind(plays, Pair) {
		t.Error("expected the 7-7 Pair")
	}
}

func TestEnumeratePlaysDeduplicates(t *testing.T) {
	hand := []Card{
		{Rank: Rank7, Suit: Spades}, {Rank: Rank7, Suit: Clubs},
	}
	plays := EnumeratePlays(hand, Rank2)
	seen := map[string]bool{}
	for _, p := range plays {
		key := canonicalKey(p.Cards)
		if seen[key] {
			t.Fatalf("duplicate play surfaced: %s", key)
		}
		seen[key] = true
	}
}

func TestEnumeratePlaysNeverReturnsInvalid(t *testing.T) {
	hand := Deal(Shuffle(NewDeck(), rand.New(rand.NewSource(3))))[0]
	plays := EnumeratePlays(hand, Rank2)
	for _, p := range plays {
		if p.Kind == Invalid {
			t.Fatalf("enumerator returned an Invalid play: %+v", p)
		}
	}
}

func TestEnumeratePlaysEveryResultClassifiesConsistently(t *testing.T) {
	hand := Deal(Shuffle(NewDeck(), rand.New(rand.NewSource(11))))[1]
	plays := EnumeratePlays(hand, Rank2)
	for _, p := range plays {
		reclassified := ClassifyPlay(p.Cards, Rank2)
		if reclassified.Kind != p.Kind || reclassified.Primary != p.Primary {
			t.Fatalf("enumerator disagrees with ClassifyPlay: enumerated %+v, classified %+v", p, reclassified)
		}
	}
}

func TestEnumeratePlaysFindsBomb(t *testing.T) {
	hand := []Card{
		{Rank: RankK, Suit: Spades}, {Rank: RankK, Suit: Clubs},
		{Rank: RankK, Suit: Diamonds}, {Rank: RankK, Suit: Hearts},
		{Rank: Rank3, Suit: Spades},
	}
	plays := EnumeratePlays(hand, Rank2)
	if !containsKind(plays, Bomb) {
		t.Error("expected a 4-card Bomb among K-K-K-K")
	}
}

func TestEnumeratePlaysWithWildcardExpandsOptions(t *testing.T) {
	// Heart-5 is the level wildcard and can pair up the lone solid 9.
	hand := []Card{
		{Rank: Rank9, Suit: Spades}, {Rank: Rank5, Suit: Hearts},
	}
	plays := EnumeratePlays(hand, Rank5)
	if !containsKind(plays, Pair) {
		t.Error("expected the wildcard to produce a Pair with the solid 9")
	}
}
