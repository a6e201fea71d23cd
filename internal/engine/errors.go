package engine

import "errors"

// Sentinel errors for the engine's command-rejection taxonomy. Callers compare with
// errors.Is; the engine always wraps these with command-specific context
// via fmt.Errorf("...: %w", ...) before returning them.
var (
	ErrIllegalPlay               = errors.New("engine: illegal play")
	ErrOutOfTurn                 = errors.New("engine: seat is not current seat")
	ErrCardsNotOwned             = errors.New("engine: cards not owned by seat")
	ErrPhaseMismatch             = errors.New("engine: command not valid in current phase")
	ErrTributeSelectionViolation = errors.New("engine: tribute card is not the required selection")
)
