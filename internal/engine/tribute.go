package engine

import "guandan/internal/domain"

// tributeState tracks an in-progress tribute/return-tribute handshake.
// It is replaced when a tribute phase starts and left in place after the
// deal moves to PhasePlaying.
type tributeState struct {
	payers     []Seat
	receiverOf map[Seat]Seat // payer -> receiver
	submitted  map[Seat]bool // payer -> forward tribute settled

	returners []Seat
	payerOf   map[Seat]Seat // receiver -> payer (for the return step)
	returned  map[Seat]bool // receiver -> return tribute settled
}

// NewDeal deals a fresh 27-card hand to each seat and, if the previous
// deal left tribute_pending, runs the tribute protocol before the deal
// accepts Play/Pass.
func (e *Engine) NewDeal() {
	e.deal = dealState{direction: 1, index: e.deal.index + 1}

	shoe := domain.Shuffle(domain.NewDeck(), e.rng)
	hands := domain.Deal(shoe)
	for s := 0; s < numSeats; s++ {
		e.deal.hands[s] = hands[s]
		e.sink.Emit(Event{Kind: EventHandChanged, Seat: Seat(s)})
	}

	lead := Seat(0)
	if len(e.match.previousPlacements) > 0 {
		lead = e.match.previousPlacements[0]
	}
	e.deal.leadSeat = lead
	e.deal.currentSeat = lead

	if !e.match.tributePending {
		e.beginPlaying()
		return
	}
	e.match.tributePending = false
	e.startTributePhase()
}

func (e *Engine) beginPlaying() {
	e.phase = PhasePlaying
	e.sink.Emit(Event{Kind: EventPlayerTurnStart, Seat: e.deal.currentSeat})
	e.scheduleAITurn(e.deal.currentSeat)
}

func (e *Engine) startTributePhase() {
	placements := e.match.previousPlacements
	head := placements[0]
	isDouble := len(placements) > 1 && placements[1] == head.Teammate()

	var payers []Seat
	if isDouble {
		payers = []Seat{placements[2], placements[3]}
	} else {
		payers = []Seat{placements[3]}
	}

	bigJokers := 0
	for _, p := range payers {
		bigJokers += countBigJokers(e.deal.hands[p])
	}
	if bigJokers >= 2 {
		for _, p := range payers {
			e.sink.Emit(Event{Kind: EventTributeResisted, Seat: p})
		}
		e.beginPlaying()
		return
	}

	e.trib = tributeState{
		payers:     payers,
		receiverOf: make(map[Seat]Seat, len(payers)),
		submitted:  make(map[Seat]bool, len(payers)),
	}
	if isDouble {
		e.assignDoubleReceivers(head, payers[0], payers[1])
	} else {
		e.trib.receiverOf[payers[0]] = head
	}

	e.phase = PhaseTribute
	for _, p := range payers {
		e.offerOrRequestTribute(p)
	}
}

// assignDoubleReceivers resolves which of the two payers' cards goes to
// the head seat vs. the head's teammate. The larger offered card always
// goes to the head seat; on a tie, the third-place payer's card goes to
// head and the loser's goes to the teammate.
func (e *Engine) assignDoubleReceivers(head, thirdPlace, loser Seat) {
	level := e.levelRank()
	cardThird := maxTributeCard(e.deal.hands[thirdPlace], level)
	cardLoser := maxTributeCard(e.deal.hands[loser], level)
	mate := head.Teammate()

	orderThird := domain.LogicalOrder(cardThird.Rank, level)
	orderLoser := domain.LogicalOrder(cardLoser.Rank, level)
	switch {
	case orderThird == orderLoser, orderThird > orderLoser:
		e.trib.receiverOf[thirdPlace] = head
		e.trib.receiverOf[loser] = mate
	default:
		e.trib.receiverOf[thirdPlace] = mate
		e.trib.receiverOf[loser] = head
	}
}

// offerOrRequestTribute settles payer's tribute immediately if an AI
// policy is installed for that seat, otherwise prompts the external
// participant via TributeRequested.
func (e *Engine) offerOrRequestTribute(payer Seat) {
	if policy := e.tributePolicy[payer]; policy != nil {
		level := e.levelRank()
		card := maxTributeCard(e.deal.hands[payer], level)
		e.settleTribute(payer, card)
		return
	}
	e.sink.Emit(Event{Kind: EventTributeRequested, Seat: payer, IsReturn: false})
}

// SubmitTribute accepts a forward-tribute or return-tribute card from
// seat, depending on the current phase.
func (e *Engine) SubmitTribute(seat Seat, card domain.Card) error {
	switch e.phase {
	case PhaseTribute:
		if !handContains(e.deal.hands[seat], []domain.Card{card}) {
			return wrapf(ErrCardsNotOwned, "submit tribute: seat %d", seat)
		}
		want := maxTributeCard(e.deal.hands[seat], e.levelRank())
		if card != want {
			return wrapf(ErrTributeSelectionViolation, "submit tribute: seat %d", seat)
		}
		e.settleTribute(seat, card)
		return nil
	case PhaseReturnTribute:
		if !handContains(e.deal.hands[seat], []domain.Card{card}) {
			return wrapf(ErrCardsNotOwned, "submit return tribute: seat %d", seat)
		}
		e.settleReturnTribute(seat, card)
		return nil
	default:
		return wrapf(ErrPhaseMismatch, "submit tribute: seat %d, phase %d", seat, e.phase)
	}
}

func (e *Engine) settleTribute(payer Seat, card domain.Card) {
	receiver := e.trib.receiverOf[payer]
	e.transferCard(payer, receiver, card)
	e.sink.Emit(Event{Kind: EventTributeSettled, Payer: payer, Receiver: receiver, Card: card, IsReturn: false})
	e.trib.submitted[payer] = true

	for _, p := range e.trib.payers {
		if !e.trib.submitted[p] {
			return
		}
	}
	e.startReturnTributePhase()
}

func (e *Engine) startReturnTributePhase() {
	receivers := uniqueSeats(e.trib.receiverOf)
	e.trib.returners = receivers
	e.trib.payerOf = make(map[Seat]Seat, len(receivers))
	e.trib.returned = make(map[Seat]bool, len(receivers))
	for payer, receiver := range e.trib.receiverOf {
		e.trib.payerOf[receiver] = payer
	}

	e.phase = PhaseReturnTribute
	for _, r := range receivers {
		if policy := e.tributePolicy[r]; policy != nil {
			card := policy.ChooseReturnTribute(e.deal.hands[r], e.levelRank())
			e.settleReturnTribute(r, card)
			continue
		}
		e.sink.Emit(Event{Kind: EventTributeRequested, Seat: r, IsReturn: true})
	}
}

func (e *Engine) settleReturnTribute(receiver Seat, card domain.Card) {
	payer := e.trib.payerOf[receiver]
	e.transferCard(receiver, payer, card)
	e.sink.Emit(Event{Kind: EventTributeSettled, Payer: receiver, Receiver: payer, Card: card, IsReturn: true})
	e.trib.returned[receiver] = true

	for _, r := range e.trib.returners {
		if !e.trib.returned[r] {
			return
		}
	}
	e.beginPlaying()
}

func (e *Engine) transferCard(from, to Seat, card domain.Card) {
	e.deal.hands[from] = removeCards(e.deal.hands[from], []domain.Card{card})
	e.deal.hands[to] = append(e.deal.hands[to], card)
	e.sink.Emit(Event{Kind: EventHandChanged, Seat: from})
	e.sink.Emit(Event{Kind: EventHandChanged, Seat: to})
}

func countBigJokers(hand []domain.Card) int {
	n := 0
	for _, c := range hand {
		if c.Rank == domain.BigJoker {
			n++
		}
	}
	return n
}

// maxTributeCard picks the payer's largest card under logical order,
// excluding heart-level wildcards unless the hand contains nothing else.
func maxTributeCard(hand []domain.Card, level domain.Rank) domain.Card {
	if c, ok := bestByOrder(hand, level, true); ok {
		return c
	}
	c, _ := bestByOrder(hand, level, false)
	return c
}

func bestByOrder(hand []domain.Card, level domain.Rank, excludeWild bool) (domain.Card, bool) {
	best, bestOrder, found := domain.Card{}, -1, false
	for _, c := range hand {
		if excludeWild && c.IsHeartLevelWild(level) {
			continue
		}
		o := domain.LogicalOrder(c.Rank, level)
		if o > bestOrder {
			bestOrder, best, found = o, c, true
		}
	}
	return best, found
}

func uniqueSeats(m map[Seat]Seat) []Seat {
	seen := make(map[Seat]bool)
	var out []Seat
	for _, v := range m {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
