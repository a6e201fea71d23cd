package domain

import "math/rand"

// NewDeck returns the 108-card Guandan shoe: two copies of each of the
// 52 standard cards plus two SmallJoker and two BigJoker.
func NewDeck() []Card {
	deck := make([]Card, 0, 108)
	for copyIdx := 0; copyIdx < 2; copyIdx++ {
		for suit := Spades; suit <= Hearts; suit++ {
			for r := Rank2; r <= RankA; r++ {
				deck = append(deck, Card{Rank: r, Suit: suit})
			}
		}
		deck = append(deck, Card{Rank: SmallJoker, Suit: NoSuit})
		deck = append(deck, Card{Rank: BigJoker, Suit: NoSuit})
	}
	return deck
}

// Shuffle returns a shuffled copy of deck using rng.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal distributes a 108-card shoe into four 27-card hands by dealing one
// card at a time to each seat in turn, round-robin.
func Deal(shoe []Card) [4][]Card {
	var hands [4][]Card
	for i, c := range shoe {
		seat := i % 4
		hands[seat] = append(hands[seat], c)
	}
	return hands
}
