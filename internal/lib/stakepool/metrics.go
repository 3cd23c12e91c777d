package stakepool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// Metrics holds per-pool gauges set by list and update. A nil *Metrics records nothing.
type Metrics struct {
	totalLamports   *prometheus.GaugeVec
	poolTokenSupply *prometheus.GaugeVec
	validatorCount  *prometheus.GaugeVec
	lastUpdateEpoch *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		totalLamports: factory.NewGaugeVec(prometheus.GaugeOpts{
			Subsystem: "stakepool",
			Name:      "total_sol",
		}, []string{"pool"}),
		poolTokenSupply: factory.NewGaugeVec(prometheus.GaugeOpts{
			Subsystem: "stakepool",
			Name:      "pool_token_supply",
		}, []string{"pool"}),
		validatorCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Subsystem: "stakepool",
			Name:      "validator_count",
		}, []string{"pool"}),
		lastUpdateEpoch: factory.NewGaugeVec(prometheus.GaugeOpts{
			Subsystem: "stakepool",
			Name:      "last_update_epoch",
		}, []string{"pool"}),
	}
}

func (m *Metrics) observe(address string, pool *sdk.StakePool, list *sdk.ValidatorList) {
	if m == nil {
		return
	}
	m.totalLamports.WithLabelValues(address).Set(float64(pool.TotalLamports) / 1e9)
	m.poolTokenSupply.WithLabelValues(address).Set(float64(pool.PoolTokenSupply) / 1e9)
	m.lastUpdateEpoch.WithLabelValues(address).Set(float64(pool.LastUpdateEpoch))
	if list != nil {
		m.validatorCount.WithLabelValues(address).Set(float64(len(list.Validators)))
	}
}
