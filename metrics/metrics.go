// Package metrics exposes simulation counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/lncensor/lncensor/simulation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics of a simulator process.
type Registry struct {
	registry *prometheus.Registry

	PaymentsTotal     *prometheus.CounterVec
	CensoredTotal     *prometheus.CounterVec
	ExposedTotal      *prometheus.CounterVec
	RouteHops         prometheus.Histogram
	RouteFeeMsat      prometheus.Histogram
	RunsTotal         prometheus.Counter
	AdversariesActive prometheus.Gauge
}

// NewRegistry creates a Registry backed by a private Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.PaymentsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lncensor_payments_total",
			Help: "Simulated payments by amount and outcome",
		},
		[]string{"amount_sat", "outcome"},
	)

	r.CensoredTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lncensor_censored_payments_total",
			Help: "Censored payments by amount and blamed AS",
		},
		[]string{"amount_sat", "asn"},
	)

	r.ExposedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lncensor_exposed_payments_total",
			Help: "Routed payments crossing an adversarial AS",
		},
		[]string{"amount_sat", "asn"},
	)

	r.RouteHops = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lncensor_route_hops",
			Help:    "Channels per found route",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
		},
	)

	r.RouteFeeMsat = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lncensor_route_fee_msat",
			Help:    "Total fee of found routes in millisatoshi",
			Buckets: prometheus.ExponentialBuckets(1, 10, 10),
		},
	)

	r.RunsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "lncensor_runs_total",
			Help: "Completed simulation runs",
		},
	)

	r.AdversariesActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "lncensor_adversaries",
			Help: "Adversarial ASes of the latest run",
		},
	)

	return r
}

// Gatherer returns the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordPayment records a classified payment.
func (r *Registry) RecordPayment(p *simulation.Payment) {
	amount := strconv.FormatInt(int64(p.Amount), 10)

	r.PaymentsTotal.WithLabelValues(amount, p.Outcome.Kind().String()).Inc()

	if a, ok := p.Outcome.Censor(); ok {
		r.CensoredTotal.WithLabelValues(amount, strconv.FormatUint(uint64(a), 10)).Inc()
	}

	for _, a := range p.Crossed {
		r.ExposedTotal.WithLabelValues(amount, strconv.FormatUint(uint64(a), 10)).Inc()
	}

	if len(p.Route.Channels) > 0 {
		r.RouteHops.Observe(float64(len(p.Route.Channels)))
		r.RouteFeeMsat.Observe(float64(p.Route.FeeMsat))
	}
}

// RecordRun records a finished run.
func (r *Registry) RecordRun(res *simulation.Result) {
	r.RunsTotal.Inc()
	r.AdversariesActive.Set(float64(res.Adversaries.Size()))
}

// Func lets the Registry observe a simulation as a hook. Payments are
// counted from the workers so that /metrics moves while a run is going.
func (r *Registry) Func(ctx simulation.HookCtx) {
	switch ctx.Pos {
	case simulation.HookPosPaymentDone:
		r.RecordPayment(ctx.Item.(*simulation.Payment))
	case simulation.HookPosRunCompleted:
		r.RecordRun(ctx.Item.(*simulation.Result))
	}
}
