package game

import "errors"

var (
	ErrEmptyRoster      = errors.New("roster must not be empty")
	ErrDuplicatePlayer  = errors.New("roster players must be distinct")
	ErrGameStarted      = errors.New("game already started")
	ErrGameFinished     = errors.New("game already finished")
	ErrNotInRoster      = errors.New("player is not part of this game")
	ErrNoPendingPrompt  = errors.New("round has no prompt awaiting an image")
	ErrNotAwaitingImage = errors.New("round is not awaiting an image")
)
