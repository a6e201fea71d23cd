package engine

import "guandan/internal/domain"

// handleDealFinished runs the MatchController's reaction to a completed
// deal: compute the head team's level delta, advance (or
// clamp) their level, and decide between MatchFinished and a routine
// DealFinished that opens the tribute phase for the next deal.
func (e *Engine) handleDealFinished(placements []Seat) {
	e.match.previousPlacements = append([]Seat{}, placements...)

	head := placements[0]
	headTeam := head.Team()
	priorLevel := e.match.teamLevels[headTeam]

	if priorLevel == domain.RankA {
		e.sink.Emit(Event{Kind: EventMatchFinished, WinningTeam: headTeam})
		return
	}

	delta := headDelta(placements, head)
	newLevel := priorLevel + domain.Rank(delta)
	if newLevel > domain.RankA {
		newLevel = domain.RankA
	}
	e.match.teamLevels[headTeam] = newLevel
	e.match.tributePending = true

	e.sink.Emit(Event{Kind: EventDealFinished, Placements: append([]Seat{}, placements...)})
}

// headDelta computes the head team's level advance: 3 if their teammate
// placed second, 2 if third, else 1.
func headDelta(placements []Seat, head Seat) int {
	mate := head.Teammate()
	if len(placements) > 1 && placements[1] == mate {
		return 3
	}
	if len(placements) > 2 && placements[2] == mate {
		return 2
	}
	return 1
}
