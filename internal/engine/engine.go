package engine

import (
	"fmt"
	"math/rand"
	"time"

	"guandan/internal/domain"
)

const cardsPerHand = 27

// dealState is the engine's private view of one deal in progress. Only
// value-copy snapshots ever leave the engine.
type dealState struct {
	hands         [numSeats][]domain.Card
	currentSeat   Seat
	leadSeat      Seat
	lastPlay      *domain.PlayInfo
	lastPlayCards []domain.Card
	lastPlaySeat  Seat
	hasLastPlay   bool
	passed        [numSeats]bool
	finishedOrder []Seat
	direction     int
	index         int // bumped every NewDeal; backs Guard cancellation
}

// matchState is the engine's private view of cross-deal bookkeeping.
type matchState struct {
	teamLevels         [2]domain.Rank
	previousPlacements []Seat
	tributePending     bool
}

// Engine is the single-threaded rule and session-state machine. It owns
// all hands, the deck, and all match/deal state; external code only ever
// sees value-copy snapshots.
type Engine struct {
	rng   *rand.Rand
	clock Clock
	sink  EventSink
	sched *Scheduler

	deal  dealState
	match matchState
	phase Phase

	playPolicy    [numSeats]PlayPolicy
	tributePolicy [numSeats]TributePolicy

	thinkDelayMin time.Duration
	thinkDelayMax time.Duration
	startLevel    domain.Rank

	trib tributeState
}

// New constructs an Engine with explicit dependencies — an RNG, a Clock,
// and an EventSink — never a package-level singleton.
func New(seed int64, clock Clock, sink EventSink) *Engine {
	if sink == nil {
		sink = NullSink{}
	}
	e := &Engine{
		rng:           rand.New(rand.NewSource(seed)),
		clock:         clock,
		sink:          sink,
		thinkDelayMin: 400 * time.Millisecond,
		thinkDelayMax: 1500 * time.Millisecond,
		startLevel:    domain.Rank2,
	}
	e.sched = NewScheduler(clock, e.guard)
	e.resetMatch()
	return e
}

func (e *Engine) guard() Guard {
	return Guard{DealIndex: e.deal.index, Phase: e.phase}
}

// SetThinkDelay overrides the bounds used when scheduling an AI seat's
// next move (default 400ms-1.5s); a simulator may want these much
// shorter.
func (e *Engine) SetThinkDelay(min, max time.Duration) {
	e.thinkDelayMin, e.thinkDelayMax = min, max
}

// SetStartingLevel overrides the level both teams reset to on NewMatch
// (config-driven; Rank2 by default).
func (e *Engine) SetStartingLevel(level domain.Rank) {
	e.startLevel = level
}

// SetPolicies installs an AI policy pair for seat; pass nil to mark the
// seat as externally (human) controlled.
func (e *Engine) SetPolicies(seat Seat, play PlayPolicy, tribute TributePolicy) {
	e.playPolicy[seat] = play
	e.tributePolicy[seat] = tribute
}

func (e *Engine) resetMatch() {
	e.match = matchState{teamLevels: [2]domain.Rank{e.startLevel, e.startLevel}}
	e.phase = PhaseIdle
}

// NewMatch resets team levels to {startLevel,startLevel} (Rank2 unless
// overridden by SetStartingLevel) and clears placements; an optional
// seed reseeds the shuffle RNG").
func (e *Engine) NewMatch(seed ...int64) {
	if len(seed) > 0 {
		e.rng = rand.New(rand.NewSource(seed[0]))
	}
	e.resetMatch()
}

// Hand returns a sorted value-copy snapshot of seat's hand.
func (e *Engine) Hand(seat Seat) HandSnapshot {
	cards := append([]domain.Card{}, e.deal.hands[seat]...)
	sortCards(cards, e.levelRank())
	return HandSnapshot{Seat: seat, Cards: cards}
}

// DealView returns a value-copy snapshot of the in-progress deal.
func (e *Engine) DealView() DealSnapshot {
	snap := DealSnapshot{
		CurrentSeat: e.deal.currentSeat,
		LeadSeat:    e.deal.leadSeat,
		Level:       e.levelRank(),
		Passed:      e.deal.passed,
		Phase:       e.phase,
	}
	snap.FinishedOrder = append([]Seat{}, e.deal.finishedOrder...)
	for s := 0; s < numSeats; s++ {
		snap.HandSizes[s] = len(e.deal.hands[s])
	}
	if e.deal.hasLastPlay {
		info := *e.deal.lastPlay
		seat := e.deal.lastPlaySeat
		snap.LastPlayInfo = &info
		snap.LastPlaySeat = &seat
		snap.LastPlayCards = append([]domain.Card{}, e.deal.lastPlayCards...)
	}
	return snap
}

// MatchView returns a value-copy snapshot of match bookkeeping.
func (e *Engine) MatchView() MatchSnapshot {
	return MatchSnapshot{
		TeamLevels:         e.match.teamLevels,
		PreviousPlacements: append([]Seat{}, e.match.previousPlacements...),
		TributePending:     e.match.tributePending,
	}
}

// levelRank is the active level rank: the current head team's level
// while tribute/playing is in progress for the upcoming deal.
func (e *Engine) levelRank() domain.Rank {
	team := 0
	if len(e.match.previousPlacements) > 0 {
		team = e.match.previousPlacements[0].Team()
	}
	return e.match.teamLevels[team]
}

// DebugSetLevel manipulates team level directly, then emits normally on
// the next DealFinished (testing hook).
func (e *Engine) DebugSetLevel(team int, level domain.Rank) {
	e.match.teamLevels[team] = level
}

// DebugSetPlacements overrides previous_placements directly (testing
// hook); orderedSeats must be a permutation of all four seats.
func (e *Engine) DebugSetPlacements(orderedSeats []Seat) {
	e.match.previousPlacements = append([]Seat{}, orderedSeats...)
}

// DebugForceWin empties seat's hand and runs the normal finish-order /
// deal-end bookkeeping as if they had played their last card (testing
// hook).
func (e *Engine) DebugForceWin(seat Seat) {
	e.deal.hands[seat] = nil
	e.sink.Emit(Event{Kind: EventHandChanged, Seat: seat})
	e.appendFinished(seat)
	e.checkDealEnd()
}

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
