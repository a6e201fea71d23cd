package domain

import "sort"

// ClassifyPlay computes the PlayInfo for cards under level rank L, trying
// rules in a strict priority order so that ambiguous inputs resolve to
// the bomb-class interpretation where one applies. It
// never mutates cards and never panics; a structural mismatch always
// yields Kind: Invalid.
func ClassifyPlay(cards []Card, level Rank) PlayInfo {
	size := len(cards)
	if size == 0 {
		return PlayInfo{Kind: Invalid}
	}
	if p, ok := classifyHeavenKing(cards); ok {
		return p
	}
	if p, ok := classifyBomb(cards, level, 6, 0); ok {
		return p
	}
	if size == 5 {
		if p, ok := classifyStraight(cards, level, true); ok {
			return p
		}
	}
	if p, ok := classifyBomb(cards, level, 4, 5); ok {
		return p
	}
	switch size {
	case 1, 2, 3:
		if p, ok := classifyBasic(cards, level, size); ok {
			return p
		}
	case 5:
		if p, ok := classifyTripsWithPair(cards, level); ok {
			return p
		}
		if p, ok := classifyStraight(cards, level, false); ok {
			return p
		}
	case 6:
		if p, ok := classifySteelPlate(cards, level); ok {
			return p
		}
		if p, ok := classifyTriplePairs(cards, level); ok {
			return p
		}
	}
	return PlayInfo{Kind: Invalid}
}

// partitionWild splits cards into the solid (non-wildcard) cards and the
// count of heart-level wildcards.
func partitionWild(cards []Card, level Rank) (solids []Card, wild int) {
	for _, c := range cards {
		if c.IsHeartLevelWild(level) {
			wild++
			continue
		}
		solids = append(solids, c)
	}
	return solids, wild
}

func classifyHeavenKing(cards []Card) (PlayInfo, bool) {
	if len(cards) != 4 {
		return PlayInfo{}, false
	}
	var small, big int
	for _, c := range cards {
		switch c.Rank {
		case SmallJoker:
			small++
		case BigJoker:
			big++
		default:
			return PlayInfo{}, false
		}
	}
	if small != 2 || big != 2 {
		return PlayInfo{}, false
	}
	return PlayInfo{Kind: HeavenKing, Primary: 1 << 30, Size: 4, Cards: cards}, true
}

// classifyBomb handles both the large (≥6, no upper bound when maxSize==0)
// and small (4-5) bomb cases: all solid cards must share one non-joker
// rank, with wildcards silently topping up the count.
func classifyBomb(cards []Card, level Rank, minSize, maxSize int) (PlayInfo, bool) {
	size := len(cards)
	if size < minSize || (maxSize > 0 && size > maxSize) {
		return PlayInfo{}, false
	}
	solids, _ := partitionWild(cards, level)
	if len(solids) == 0 {
		return PlayInfo{}, false
	}
	rank := solids[0].Rank
	if rank == SmallJoker || rank == BigJoker {
		return PlayInfo{}, false
	}
	for _, c := range solids[1:] {
		if c.Rank != rank {
			return PlayInfo{}, false
		}
	}
	return PlayInfo{Kind: Bomb, Primary: LogicalOrder(rank, level), Size: size, Cards: cards}, true
}

// classifyBasic handles Single/Pair/Trips (size 1..3): all solid cards
// share one rank. A hand made entirely of wildcards (possible only for a
// lone heart-level card, or the rare pair of both copies) resolves to the
// level rank itself — the wildcards' own face identity.
func classifyBasic(cards []Card, level Rank, size int) (PlayInfo, bool) {
	kinds := [4]Kind{Invalid, Single, Pair, Trips}
	kind := kinds[size]
	solids, _ := partitionWild(cards, level)
	if len(solids) == 0 {
		return PlayInfo{Kind: kind, Primary: LogicalOrder(level, level), Size: size, Cards: cards}, true
	}
	rank := solids[0].Rank
	for _, c := range solids[1:] {
		if c.Rank != rank {
			return PlayInfo{}, false
		}
	}
	return PlayInfo{Kind: kind, Primary: LogicalOrder(rank, level), Size: size, Cards: cards}, true
}

type straightWindow struct {
	ranks   [5]Rank
	primary int
}

// straightWindows enumerates the nine 5-rank runs a straight or straight
// flush can occupy: the eight windows starting 3-7 through 10-A, plus the
// special ace-low A-2-3-4-5 run whose primary is fixed at 5.
func straightWindows() []straightWindow {
	windows := make([]straightWindow, 0, 9)
	for start := 3; start <= 10; start++ {
		w := straightWindow{primary: start + 4}
		for i := 0; i < 5; i++ {
			w.ranks[i] = Rank(start + i)
		}
		windows = append(windows, w)
	}
	windows = append(windows, straightWindow{
		ranks:   [5]Rank{RankA, Rank2, Rank3, Rank4, Rank5},
		primary: 5,
	})
	return windows
}

// classifyStraight handles Straight and (flush=true) StraightFlush: both
// are always exactly five cards. Jokers are forbidden as solid ranks;
// wildcards fill whichever window slots the solids leave open.
func classifyStraight(cards []Card, level Rank, flush bool) (PlayInfo, bool) {
	if len(cards) != 5 {
		return PlayInfo{}, false
	}
	solids, _ := partitionWild(cards, level)
	for _, c := range solids {
		if c.IsJoker() {
			return PlayInfo{}, false
		}
	}
	for _, w := range straightWindows() {
		inWindow := [5]Rank{}
		copy(inWindow[:], w.ranks[:])
		seen := map[Rank]bool{}
		suit, suitSet, ok := NoSuit, false, true
		for _, c := range solids {
			member := false
			for _, r := range inWindow {
				if c.Rank == r {
					member = true
					break
				}
			}
			if !member || seen[c.Rank] {
				ok = false
				break
			}
			seen[c.Rank] = true
			if flush {
				if !suitSet {
					suit, suitSet = c.Suit, true
				} else if c.Suit != suit {
					ok = false
					break
				}
			}
		}
		if !ok || (flush && !suitSet) {
			continue
		}
		kind, isFlush := Straight, false
		if flush {
			kind, isFlush = StraightFlush, true
		}
		return PlayInfo{Kind: kind, Primary: w.primary, Size: 5, IsStraightFlush: isFlush, Cards: cards}, true
	}
	return PlayInfo{}, false
}

// classifyTripsWithPair handles the size-5 3+2 combination: at most two
// distinct solid ranks, one serving as the triple and the other (or
// wildcards) as the pair.
func classifyTripsWithPair(cards []Card, level Rank) (PlayInfo, bool) {
	if len(cards) != 5 {
		return PlayInfo{}, false
	}
	solids, wild := partitionWild(cards, level)
	counts := map[Rank]int{}
	for _, c := range solids {
		if c.IsJoker() {
			return PlayInfo{}, false
		}
		counts[c.Rank]++
	}
	if len(counts) > 2 {
		return PlayInfo{}, false
	}
	ranks := make([]Rank, 0, len(counts))
	for r := range counts {
		ranks = append(ranks, r)
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	tryTriple := func(tripleRank Rank) (PlayInfo, bool) {
		tripleNeed := 3 - counts[tripleRank]
		if tripleNeed < 0 || tripleNeed > wild {
			return PlayInfo{}, false
		}
		remainingWild := wild - tripleNeed
		pairHave := 0
		for r, n := range counts {
			if r != tripleRank {
				pairHave += n
			}
		}
		pairNeed := 2 - pairHave
		if pairNeed < 0 || pairNeed > remainingWild {
			return PlayInfo{}, false
		}
		return PlayInfo{Kind: TripsWithPair, Primary: LogicalOrder(tripleRank, level), Size: 5, Cards: cards}, true
	}

	switch len(ranks) {
	case 0:
		return PlayInfo{Kind: TripsWithPair, Primary: LogicalOrder(level, level), Size: 5, Cards: cards}, true
	case 1:
		return tryTriple(ranks[0])
	case 2:
		if p, ok := tryTriple(ranks[0]); ok {
			return p, true
		}
		return tryTriple(ranks[1])
	default:
		return PlayInfo{}, false
	}
}

// classifyConsecutiveGroups is the shared engine behind SteelPlate (two
// consecutive ranks x3) and TriplePairs (three consecutive ranks x2):
// every solid card must land within a runLen-rank window of groupSize
// each, with wildcards filling the rest.
func classifyConsecutiveGroups(cards []Card, level Rank, runLen, groupSize int, kind Kind) (PlayInfo, bool) {
	if len(cards) != runLen*groupSize {
		return PlayInfo{}, false
	}
	solids, wild := partitionWild(cards, level)
	counts := map[Rank]int{}
	for _, c := range solids {
		if c.IsJoker() {
			return PlayInfo{}, false
		}
		if _, ok := SequenceValue(c.Rank); !ok {
			return PlayInfo{}, false
		}
		counts[c.Rank]++
		if counts[c.Rank] > groupSize {
			return PlayInfo{}, false
		}
	}
	for start := 3; start+runLen-1 <= 14; start++ {
		remainingWild := wild
		ok := true
		for i := 0; i < runLen; i++ {
			need := groupSize - counts[Rank(start+i)]
			if need < 0 || need > remainingWild {
				ok = false
				break
			}
			remainingWild -= need
		}
		if !ok {
			continue
		}
		inRange := true
		for r := range counts {
			if int(r) < start || int(r) > start+runLen-1 {
				inRange = false
				break
			}
		}
		if !inRange {
			continue
		}
		top := Rank(start + runLen - 1)
		return PlayInfo{Kind: kind, Primary: LogicalOrder(top, level), Size: runLen * groupSize, Cards: cards}, true
	}
	return PlayInfo{}, false
}

func classifySteelPlate(cards []Card, level Rank) (PlayInfo, bool) {
	return classifyConsecutiveGroups(cards, level, 2, 3, SteelPlate)
}

func classifyTriplePairs(cards []Card, level Rank) (PlayInfo, bool) {
	return classifyConsecutiveGroups(cards, level, 3, 2, TriplePairs)
}
