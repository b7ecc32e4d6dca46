package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_ledger_operations_total",
			Help: "Ledger mutations by operation and result",
		},
		[]string{"op", "result"},
	)
	taxCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_tax_collected_total",
			Help: "Currency removed from circulation by transfer tax",
		},
	)
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_purchases_total",
			Help: "Marketplace purchase attempts by result",
		},
		[]string{"result"},
	)
	wagers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_wagers_total",
			Help: "Coinflip challenge transitions",
		},
		[]string{"transition"},
	)
	rewardsPaid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_rewards_paid_total",
			Help: "Rewards credited by kind",
		},
		[]string{"kind"},
	)
)

func result(err error) string {
	if err != nil {
		return "rejected"
	}
	return "ok"
}
