package blackjack

import "errors"

var (
	ErrGameInProgress   = errors.New("game already in progress")
	ErrRoundNotFinished = errors.New("round not finished")
	ErrGameFinished     = errors.New("game already finished")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
