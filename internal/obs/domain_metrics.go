package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrderCreateTotal counts order creation attempts by gateway client and outcome.
	OrderCreateTotal *prometheus.CounterVec
	// OrderCreateLatency records gateway order creation latency in milliseconds.
	OrderCreateLatency *prometheus.HistogramVec
	// PaymentVerificationTotal counts callback verification outcomes.
	PaymentVerificationTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrderCreateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_create_total",
			Help:      "Count of order creation outcomes.",
		}, []string{"client", "result"})
		OrderCreateLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_create_duration_ms",
			Help:      "Latency of gateway order creation in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"client"})
		PaymentVerificationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verification_total",
			Help:      "Count of payment callback verification outcomes.",
		}, []string{"result"})

		OrderCreateTotal = register(reg, OrderCreateTotal)
		OrderCreateLatency = register(reg, OrderCreateLatency)
		PaymentVerificationTotal = register(reg, PaymentVerificationTotal)
	})
}
