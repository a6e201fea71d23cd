package engine

import (
	"sort"

	"guandan/internal/domain"
)

// sortCards orders a hand by ascending logical order under level, a
// stable tiebreak by suit for display purposes.
func sortCards(cards []domain.Card, level domain.Rank) {
	sort.SliceStable(cards, func(i, j int) bool {
		oi, oj := domain.LogicalOrder(cards[i].Rank, level), domain.LogicalOrder(cards[j].Rank, level)
		if oi != oj {
			return oi < oj
		}
		return cards[i].Suit < cards[j].Suit
	})
}
