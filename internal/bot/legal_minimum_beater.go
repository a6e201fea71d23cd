// Package bot implements the engine's shipped AI policy. Per the
// Non-goal that rules out an opponent model smarter than a
// legal-minimum-beater, LegalMinimumBeater never looks ahead, counts
// cards, or models opponents — it enumerates legal plays and picks the
// weakest one that works.
package bot

import (
	"sort"

	"guandan/internal/domain"
	"guandan/internal/engine"
)

// LegalMinimumBeater implements engine.PlayPolicy and
// engine.TributePolicy with the simplest strategy that plays legally:
// lead with the weakest available combination, follow with the weakest
// enumerated play that beats the board, pass otherwise.
type LegalMinimumBeater struct{}

// ChoosePlay selects seat's next move from its own hand.
func (LegalMinimumBeater) ChoosePlay(d engine.DealSnapshot, hand []domain.Card, seat engine.Seat) ([]domain.Card, bool) {
	plays := domain.EnumeratePlays(hand, d.Level)
	if len(plays) == 0 {
		return nil, true
	}

	if d.LastPlayInfo == nil {
		weakest := weakestPlay(plays)
		return weakest.Cards, false
	}

	var beating []domain.PlayInfo
	for _, p := range plays {
		if domain.Beats(p, d.LastPlayInfo) {
			beating = append(beating, p)
		}
	}
	if len(beating) == 0 {
		return nil, true
	}
	weakest := weakestPlay(beating)
	return weakest.Cards, false
}

// ChooseTribute offers the payer's largest card under logical order,
// matching the engine's own selection constraint so a LegalMinimumBeater
// payer never gets rejected by SubmitTribute.
func (LegalMinimumBeater) ChooseTribute(m engine.MatchSnapshot, hand []domain.Card, level domain.Rank) domain.Card {
	best, bestOrder := hand[0], -1
	for _, c := range hand {
		if c.IsHeartLevelWild(level) {
			continue
		}
		if o := domain.LogicalOrder(c.Rank, level); o > bestOrder {
			bestOrder, best = o, c
		}
	}
	if bestOrder >= 0 {
		return best
	}
	return maxByOrder(hand, level)
}

// ChooseReturnTribute prefers a non-joker, non-level card of rank 10 or
// below; falling back to the weakest card in hand otherwise.
func (LegalMinimumBeater) ChooseReturnTribute(hand []domain.Card, level domain.Rank) domain.Card {
	var candidates []domain.Card
	for _, c := range hand {
		if c.IsJoker() || c.Rank == level {
			continue
		}
		if c.Rank <= domain.Rank10 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) > 0 {
		return minByOrder(candidates, level)
	}
	return minByOrder(hand, level)
}

func weakestPlay(plays []domain.PlayInfo) domain.PlayInfo {
	out := append([]domain.PlayInfo{}, plays...)
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Tier(), out[j].Tier()
		if ti != tj {
			return ti < tj
		}
		return out[i].Primary < out[j].Primary
	})
	return out[0]
}

func maxByOrder(hand []domain.Card, level domain.Rank) domain.Card {
	best, bestOrder := hand[0], domain.LogicalOrder(hand[0].Rank, level)
	for _, c := range hand[1:] {
		if o := domain.LogicalOrder(c.Rank, level); o > bestOrder {
			bestOrder, best = o, c
		}
	}
	return best
}

func minByOrder(hand []domain.Card, level domain.Rank) domain.Card {
	best, bestOrder := hand[0], domain.LogicalOrder(hand[0].Rank, level)
	for _, c := range hand[1:] {
		if o := domain.LogicalOrder(c.Rank, level); o < bestOrder {
			bestOrder, best = o, c
		}
	}
	return best
}
