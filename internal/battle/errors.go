package battle

import "errors"

// Errors returned when a join, leave or turn query is made in the wrong state.
var (
	ErrAlreadyInBattle      = errors.New("character is already in a battle")
	ErrNotInBattle          = errors.New("character is not in this battle")
	ErrBattleAlreadyStarted = errors.New("battle has already started")
	ErrNoCharacters         = errors.New("battle has no characters")
	ErrInvalidStats         = errors.New("invalid character stats")
)
