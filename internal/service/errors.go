package service

import "errors"

// Rejected preconditions. Every one of these is recoverable and maps to a
// user-facing message at the call boundary.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSelfTarget          = errors.New("cannot target yourself")
	ErrShopNotFound        = errors.New("shop not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrChallengeNotFound   = errors.New("no pending challenge")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNotOwner            = errors.New("not the shop owner")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrShopLimitReached    = errors.New("shop limit reached")
	ErrItemLimitReached    = errors.New("shop is full")
	ErrOutOfStock          = errors.New("out of stock")
	ErrAlreadyClaimedToday = errors.New("daily reward already claimed today")
	ErrTargetBusy          = errors.New("target already has a pending challenge")
	ErrChallengerBusy      = errors.New("you already have an outgoing challenge")
	ErrAlreadyResolved     = errors.New("challenge already expired or resolved")
	ErrPlayerOffline       = errors.New("player is offline")
	ErrInvalidName         = errors.New("invalid name")
	ErrNotEnoughItems      = errors.New("not enough items held")
)
