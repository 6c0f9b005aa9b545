package app

import (
	"errors"

	"doudizhu/internal/domain"
)

// GameError is a rejected intent. Code is stable for clients and tests;
// Message is the human-readable reason sent with the error event.
type GameError struct {
	Code    string
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

var (
	ErrAlreadyInRoom          = &GameError{Code: "AlreadyInRoom", Message: "you are already in a room"}
	ErrInvalidRoom            = &GameError{Code: "InvalidRoom", Message: "invalid room id"}
	ErrRoomFull               = &GameError{Code: "RoomFull", Message: "room is full"}
	ErrNotInRoom              = &GameError{Code: "NotInRoom", Message: "you are not in any room"}
	ErrNotInPlayerList        = &GameError{Code: "NotInPlayerList", Message: "you are not in the room's player list"}
	ErrAlreadyReady           = &GameError{Code: "AlreadyReady", Message: "you are already ready"}
	ErrGameInProgress         = &GameError{Code: "GameInProgress", Message: "a game is in progress, wait for the next one"}
	ErrGameFinished           = &GameError{Code: "GameFinished", Message: "the game is over, request a reset to play again"}
	ErrNotYourTurn            = &GameError{Code: "NotYourTurn", Message: "it is not your turn"}
	ErrGameNotStarted         = &GameError{Code: "GameNotStarted", Message: "the game has not started"}
	ErrEmptyPlaySelection     = &GameError{Code: "EmptyPlaySelection", Message: "select the cards to play"}
	ErrCardsNotInHand         = &GameError{Code: "CardsNotInHand", Message: "you do not have those cards"}
	ErrInvalidCombination     = &GameError{Code: "InvalidCombination", Message: "those cards do not form a valid combination"}
	ErrPlayTooWeak            = &GameError{Code: "PlayTooWeak", Message: "your play does not beat the table"}
	ErrCannotPassOnEmptyTable = &GameError{Code: "CannotPassOnEmptyTable", Message: "you lead this trick and cannot pass"}
)

// ErrorEvent builds the unicast error event reporting err to pid. Errors that
// are not a *GameError are reported generically.
func ErrorEvent(pid domain.PlayerID, err error) Event {
	msg := "internal error"
	var gerr *GameError
	if errors.As(err, &gerr) {
		msg = gerr.Message
	}
	return Event{Kind: EventError, Payload: msg, Recipients: []domain.PlayerID{pid}}
}
