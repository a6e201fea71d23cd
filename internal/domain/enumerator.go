package domain

import (
	"sort"
	"strings"
)

// EnumeratePlays produces every legal play reachable from hand under level
// rank L. It groups solid cards by rank and treats wildcards
// as a small fungible pool, generating candidate card sets structurally
// and then validating each through ClassifyPlay — the same source of
// truth the trick controller uses, so the enumerator can never disagree
// with it. For the rank-window kinds (TripsWithPair, SteelPlate,
// TriplePairs, Straight, StraightFlush) only one representative card set
// per window is generated rather than every suit permutation, mirroring
// the included bot's own "consider only one straight for a given rank
// sequence" simplification. Deterministic modulo input order; results are
// deduplicated by each play's sorted-card canonical key.
func EnumeratePlays(hand []Card, level Rank) []PlayInfo {
	var candidates [][]Card
	candidates = append(candidates, groupPlayCandidates(hand, level, 1)...)
	candidates = append(candidates, groupPlayCandidates(hand, level, 2)...)
	candidates = append(candidates, groupPlayCandidates(hand, level, 3)...)
	candidates = append(candidates, bombCandidates(hand, level)...)
	candidates = append(candidates, heavenKingCandidates(hand)...)
	candidates = append(candidates, tripsWithPairCandidates(hand, level)...)
	candidates = append(candidates, consecutiveGroupCandidates(hand, level, 2, 3)...)
	candidates = append(candidates, consecutiveGroupCandidates(hand, level, 3, 2)...)
	candidates = append(candidates, straightCandidates(hand, level, false)...)
	candidates = append(candidates, straightCandidates(hand, level, true)...)

	seen := make(map[string]bool, len(candidates))
	out := make([]PlayInfo, 0, len(candidates))
	for _, c := range candidates {
		info := ClassifyPlay(c, level)
		if info.Kind == Invalid {
			continue
		}
		key := canonicalKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, info)
	}
	return out
}

func groupByRank(cards []Card) map[Rank][]Card {
	m := make(map[Rank][]Card)
	for _, c := range cards {
		m[c.Rank] = append(m[c.Rank], c)
	}
	return m
}

// splitWildPool splits hand into the solid cards and the heart-level
// wildcards themselves, the pool that candidate generation draws from.
func splitWildPool(hand []Card, level Rank) (solids, wildPool []Card) {
	for _, c := range hand {
		if c.IsHeartLevelWild(level) {
			wildPool = append(wildPool, c)
			continue
		}
		solids = append(solids, c)
	}
	return solids, wildPool
}

func combinations(cards []Card, k int) [][]Card {
	n := len(cards)
	if k < 0 || k > n {
		return nil
	}
	if k == 0 {
		return [][]Card{{}}
	}
	var out [][]Card
	chosen := make([]Card, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(chosen) == k {
			cp := make([]Card, k)
			copy(cp, chosen)
			out = append(out, cp)
			return
		}
		for i := start; i < n; i++ {
			chosen = append(chosen, cards[i])
			rec(i + 1)
			chosen = chosen[:len(chosen)-1]
		}
	}
	rec(0)
	return out
}

// fillFromWild takes up to need cards from solidsAvail, topping up any
// shortfall from wildPool's front. Reports how many wildcards it used.
func fillFromWild(solidsAvail []Card, need int, wildPool []Card) ([]Card, int, bool) {
	take := need
	if take > len(solidsAvail) {
		take = len(solidsAvail)
	}
	wildNeed := need - take
	if wildNeed > len(wildPool) {
		return nil, 0, false
	}
	cards := make([]Card, 0, need)
	cards = append(cards, solidsAvail[:take]...)
	cards = append(cards, wildPool[:wildNeed]...)
	return cards, wildNeed, true
}

// groupPlayCandidates enumerates Single/Pair/Trips candidates (k=1,2,3):
// for each solid rank group, choose(group, k-wildcardsUsed) combined with
// every way of picking wildcardsUsed cards from the wildcard pool.
func groupPlayCandidates(hand []Card, level Rank, k int) [][]Card {
	solids, wildPool := splitWildPool(hand, level)
	groups := groupByRank(solids)
	var out [][]Card
	for _, group := range groups {
		maxWild := k
		if maxWild > len(wildPool) {
			maxWild = len(wildPool)
		}
		for wUsed := 0; wUsed <= maxWild; wUsed++ {
			need := k - wUsed
			if need < 0 || need > len(group) {
				continue
			}
			for _, solidCombo := range combinations(group, need) {
				for _, wildCombo := range combinations(wildPool, wUsed) {
					cards := append(append([]Card{}, solidCombo...), wildCombo...)
					out = append(out, cards)
				}
			}
		}
	}
	return out
}

// bombCandidates enumerates, for each non-joker rank, every total size
// from 4 up to solids+wildcards, partitioning between the two.
func bombCandidates(hand []Card, level Rank) [][]Card {
	solids, wildPool := splitWildPool(hand, level)
	groups := groupByRank(solids)
	var out [][]Card
	for rank, group := range groups {
		if rank == SmallJoker || rank == BigJoker {
			continue
		}
		maxTotal := len(group) + len(wildPool)
		for total := 4; total <= maxTotal; total++ {
			maxWild := total
			if maxWild > len(wildPool) {
				maxWild = len(wildPool)
			}
			minWild := total - len(group)
			if minWild < 0 {
				minWild = 0
			}
			for wUsed := minWild; wUsed <= maxWild; wUsed++ {
				need := total - wUsed
				if need < 0 || need > len(group) {
					continue
				}
				for _, solidCombo := range combinations(group, need) {
					for _, wildCombo := range combinations(wildPool, wUsed) {
						cards := append(append([]Card{}, solidCombo...), wildCombo...)
						out = append(out, cards)
					}
				}
			}
		}
	}
	return out
}

// heavenKingCandidates yields the single four-joker candidate when both
// joker ranks are doubled up in hand; wildcards never apply.
func heavenKingCandidates(hand []Card) [][]Card {
	var smalls, bigs []Card
	for _, c := range hand {
		switch c.Rank {
		case SmallJoker:
			smalls = append(smalls, c)
		case BigJoker:
			bigs = append(bigs, c)
		}
	}
	if len(smalls) >= 2 && len(bigs) >= 2 {
		return [][]Card{{smalls[0], smalls[1], bigs[0], bigs[1]}}
	}
	return nil
}

// tripsWithPairCandidates tries each solid rank as the triple, pairing it
// with the first other rank group (or leftover wildcards) that completes
// the pair — one representative candidate per triple rank.
func tripsWithPairCandidates(hand []Card, level Rank) [][]Card {
	solids, wildPool := splitWildPool(hand, level)
	groups := groupByRank(solids)
	var out [][]Card
	for r1, group1 := range groups {
		tripleCards, wUsed1, ok := fillFromWild(group1, 3, wildPool)
		if !ok {
			continue
		}
		remaining := wildPool[wUsed1:]
		found := false
		for r2, group2 := range groups {
			if r2 == r1 {
				continue
			}
			pairCards, _, ok2 := fillFromWild(group2, 2, remaining)
			if ok2 {
				out = append(out, append(append([]Card{}, tripleCards...), pairCards...))
				found = true
				break
			}
		}
		if !found && len(remaining) >= 2 {
			out = append(out, append(append([]Card{}, tripleCards...), remaining[:2]...))
		}
	}
	return out
}

// consecutiveGroupCandidates slides a runLen-rank window across 3..A,
// filling groupSize copies of each rank from solids then wildcards —
// backs both SteelPlate (2x3) and TriplePairs (3x2).
func consecutiveGroupCandidates(hand []Card, level Rank, runLen, groupSize int) [][]Card {
	solids, wildPool := splitWildPool(hand, level)
	groups := groupByRank(solids)
	var out [][]Card
	for start := 3; start+runLen-1 <= 14; start++ {
		remaining := append([]Card{}, wildPool...)
		var combo []Card
		ok := true
		for i := 0; i < runLen; i++ {
			r := Rank(start + i)
			cards, wUsed, good := fillFromWild(groups[r], groupSize, remaining)
			if !good {
				ok = false
				break
			}
			combo = append(combo, cards...)
			remaining = remaining[wUsed:]
		}
		if ok {
			out = append(out, combo)
		}
	}
	return out
}

// straightCandidates slides the nine rank windows across
// solids grouped by rank (and, for flush, restricted to one suit at a
// time), filling gaps with wildcards.
func straightCandidates(hand []Card, level Rank, flush bool) [][]Card {
	solids, wildPool := splitWildPool(hand, level)
	windows := straightWindows()
	var out [][]Card

	tryGroups := func(bySolidRank map[Rank][]Card) {
		for _, w := range windows {
			remaining := append([]Card{}, wildPool...)
			var combo []Card
			ok := true
			for _, r := range w.ranks {
				cards, wUsed, good := fillFromWild(bySolidRank[r], 1, remaining)
				if !good {
					ok = false
					break
				}
				combo = append(combo, cards...)
				remaining = remaining[wUsed:]
			}
			if ok {
				out = append(out, combo)
			}
		}
	}

	if !flush {
		tryGroups(groupByRank(solids))
		return out
	}
	for suit := Spades; suit <= Hearts; suit++ {
		var suited []Card
		for _, c := range solids {
			if c.Suit == suit {
				suited = append(suited, c)
			}
		}
		tryGroups(groupByRank(suited))
	}
	return out
}

func canonicalKey(cards []Card) string {
	sorted := append([]Card{}, cards...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Suit < sorted[j].Suit
	})
	var b strings.Builder
	for _, c := range sorted {
		b.WriteString(c.String())
		b.WriteByte('|')
	}
	return b.String()
}
