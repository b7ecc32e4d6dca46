package domain

type EventType string

const (
	EventSession           EventType = "session"
	EventStartingBalance   EventType = "starting_balance"
	EventOfflineSales      EventType = "offline_sales"
	EventInterest          EventType = "interest"
	EventSale              EventType = "sale"
	EventPaymentReceived   EventType = "payment_received"
	EventBalanceChanged    EventType = "balance_changed"
	EventChallengeReceived EventType = "coinflip_challenge"
	EventChallengeExpired  EventType = "coinflip_expired"
	EventChallengeDenied   EventType = "coinflip_denied"
	EventChallengeCanceled EventType = "coinflip_cancelled"
	EventFlipStarted       EventType = "coinflip_flipping"
	EventFlipResult        EventType = "coinflip_result"
	EventPvPReward         EventType = "pvp_reward"
	EventPvPLoss           EventType = "pvp_loss"
	EventMobDrop           EventType = "mob_drop"
)

// Event is a message pushed to a connected player.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}
