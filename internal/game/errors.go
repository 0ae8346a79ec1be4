package game

import "errors"

var (
	ErrGameOver          = errors.New("game is over")
	ErrUnknownAction     = errors.New("unknown action")
	ErrActionUnavailable = errors.New("action not available")
	ErrNotEnoughAP       = errors.New("not enough action points")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCannotDelegate    = errors.New("action cannot be delegated")
	ErrEventPending      = errors.New("an event needs a decision first")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrCannotDefer       = errors.New("event cannot be deferred")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrUpgradeOwned      = errors.New("upgrade already owned")
	ErrBadSelection      = errors.New("invalid selection")
	ErrNotFound          = errors.New("game not found")
	ErrBadSlot           = errors.New("invalid save slot")
)
