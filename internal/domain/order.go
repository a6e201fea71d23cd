package domain

// LogicalOrder returns the comparable order value of a card's rank under
// level rank L: 2<3<...<10<J<Q<K<A<L<SmallJoker<BigJoker. The
// level rank itself is always ordered just below the jokers, even when
// L is the face rank "2".
func LogicalOrder(r Rank, level Rank) int {
	if r == SmallJoker {
		return 100
	}
	if r == BigJoker {
		return 101
	}
	if r == level {
		return 99
	}
	return faceOrder(r)
}

// faceOrder is the natural face ordering 2..A, ignoring level rank.
func faceOrder(r Rank) int {
	return int(r)
}

// SequenceValue returns the straight/run position of a face rank for
// straights and straight flushes: 3..A map to 3..14; the rank "2" and
// jokers are never part of a run and return 0, false.
func SequenceValue(r Rank) (int, bool) {
	if r >= Rank3 && r <= RankA {
		return int(r), true
	}
	return 0, false
}

// Ace-low straights (A-2-3-4-5, face ranks not level ranks) cap at the
// bottom; aceLowValue maps an Ace used as a "1" in that run.
const aceLowValue = 1
