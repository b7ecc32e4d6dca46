package domain

import "github.com/shopspring/decimal"

// RewardInfo tracks the daily streak and weekly interest stamps of a player.
type RewardInfo struct {
	Streak           int   `json:"streak"`
	Claimed          bool  `json:"claimed"`
	LastClaimDay     int64 `json:"last_claim_day"`
	LastInterestWeek int64 `json:"last_interest_week"`
}

type DailyClaim struct {
	Reward     decimal.Decimal `json:"reward"`
	Streak     int             `json:"streak"`
	MaxStreak  int             `json:"max_streak"`
	NextReward decimal.Decimal `json:"next_reward"`
	MaxedOut   bool            `json:"maxed_out"`
}

type StreakStatus struct {
	Streak     int             `json:"streak"`
	MaxStreak  int             `json:"max_streak"`
	CanClaim   bool            `json:"can_claim"`
	Broken     bool            `json:"broken"`
	NextReward decimal.Decimal `json:"next_reward"`
}

// OfflineSalesSummary accumulates sales made while the shop owner was away.
type OfflineSalesSummary struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
