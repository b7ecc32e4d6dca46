package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChallengeState string

const (
	ChallengePending   ChallengeState = "PENDING"
	ChallengeAccepted  ChallengeState = "ACCEPTED"
	ChallengeExpired   ChallengeState = "EXPIRED"
	ChallengeDenied    ChallengeState = "DENIED"
	ChallengeCancelled ChallengeState = "CANCELLED"
)

// Challenge is a pending coinflip offer. The pending set is keyed by TargetID.
type Challenge struct {
	ID             uuid.UUID       `json:"id"`
	ChallengerID   PlayerID        `json:"challenger_id"`
	ChallengerName string          `json:"challenger_name"`
	TargetID       PlayerID        `json:"target_id"`
	TargetName     string          `json:"target_name"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// FlipResult is the decided outcome of an accepted challenge. The pot is
// credited to the winner at RevealAt.
type FlipResult struct {
	ChallengeID uuid.UUID       `json:"challenge_id"`
	WinnerID    PlayerID        `json:"winner_id"`
	WinnerName  string          `json:"winner_name"`
	LoserID     PlayerID        `json:"loser_id"`
	LoserName   string          `json:"loser_name"`
	Stake       decimal.Decimal `json:"stake"`
	Pot         decimal.Decimal `json:"pot"`
	RevealAt    time.Time       `json:"reveal_at"`
}
