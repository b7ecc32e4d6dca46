package service

import (
	"economy_server/internal/domain"

	"github.com/shopspring/decimal"
)

// AdminService provides admin statistics and player lookups
type AdminService struct {
	ledger  *Ledger
	txlog   *TransactionLog
	dir     *Directory
	market  *Marketplace
	rewards *RewardScheduler
	wagers  *WagerEngine
}

// NewAdminService creates a new admin service
func NewAdminService(ledger *Ledger, txlog *TransactionLog, dir *Directory, market *Marketplace, rewards *RewardScheduler, wagers *WagerEngine) *AdminService {
	return &AdminService{ledger: ledger, txlog: txlog, dir: dir, market: market, rewards: rewards, wagers: wagers}
}

// Stats represents economy statistics
type Stats struct {
	PlayersKnown      int             `json:"players_known"`
	Accounts          int             `json:"accounts"`
	TotalSupply       decimal.Decimal `json:"total_supply"`
	TaxCollected      decimal.Decimal `json:"tax_collected"`
	Shops             int             `json:"shops"`
	Listings          int             `json:"listings"`
	PendingChallenges int             `json:"pending_challenges"`
	InFlightWagers    int             `json:"in_flight_wagers"`
}

// GetStats returns economy statistics
func (s *AdminService) GetStats() Stats {
	return Stats{
		PlayersKnown:      s.dir.Count(),
		Accounts:          s.ledger.Accounts(),
		TotalSupply:       s.ledger.TotalSupply(),
		TaxCollected:      s.ledger.TaxCollected(),
		Shops:             s.market.ShopCount(),
		Listings:          s.market.ListingCount(),
		PendingChallenges: s.wagers.PendingCount(),
		InFlightWagers:    s.wagers.InFlight(),
	}
}

// PlayerInfo represents player information for admin
type PlayerInfo struct {
	Player       domain.Player              `json:"player"`
	Balance      decimal.Decimal            `json:"balance"`
	Rank         int                        `json:"rank"`
	Rewards      domain.RewardInfo          `json:"rewards"`
	Shops        []domain.Shop              `json:"shops"`
	Transactions []domain.TransactionRecord `json:"transactions"`
}

// GetPlayer returns player info by id or name
func (s *AdminService) GetPlayer(ref string) (PlayerInfo, error) {
	p, err := s.dir.Resolve(ref)
	if err != nil {
		return PlayerInfo{}, err
	}
	return PlayerInfo{
		Player:       p,
		Balance:      s.ledger.Get(p.ID),
		Rank:         s.ledger.Rank(p.ID),
		Rewards:      s.rewards.Info(p.ID),
		Shops:        s.market.ShopsByOwner(p.ID),
		Transactions: s.txlog.Recent(p.ID, DefaultHistoryLimit),
	}, nil
}
