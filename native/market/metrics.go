package market

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce  sync.Once
	settlements  *prometheus.CounterVec
	refundSkips  *prometheus.CounterVec
	releaseSkips *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		settlements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_settlements_total",
			Help: "Count of completed settlements by entry kind.",
		}, []string{"kind"})
		refundSkips = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_refund_skips_total",
			Help: "Count of claim refunds skipped for disallowed recipients.",
		}, []string{"kind"})
		releaseSkips = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_release_skips_total",
			Help: "Count of asset releases skipped for disallowed recipients.",
		}, []string{"kind"})
	})
}

// RegisterMetrics attaches the marketplace collectors to the supplied
// registry. Safe to call once per process.
func RegisterMetrics(reg prometheus.Registerer) error {
	initMetrics()
	for _, c := range []prometheus.Collector{settlements, refundSkips, releaseSkips} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func init() { initMetrics() }
