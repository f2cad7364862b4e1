package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects staging traffic counters. A nil *Registry is valid and
// records nothing, so library callers can opt out.
type Registry struct {
	reg *prometheus.Registry

	stages       prometheus.Counter
	drains       prometheus.Counter
	drainedItems prometheus.Counter
	duplicates   prometheus.Counter
	lazyExpiries prometheus.Counter
	sweepRemoved prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	stages := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderstage_stages_total"})
	drains := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderstage_drains_total"})
	drainedItems := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderstage_drained_items_total"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderstage_duplicates_total"})
	lazyExpiries := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderstage_lazy_expiries_total"})
	sweepRemoved := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderstage_sweep_removed_total"})

	r.MustRegister(stages, drains, drainedItems, duplicates, lazyExpiries, sweepRemoved)
	return &Registry{
		reg:          r,
		stages:       stages,
		drains:       drains,
		drainedItems: drainedItems,
		duplicates:   duplicates,
		lazyExpiries: lazyExpiries,
		sweepRemoved: sweepRemoved,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) IncStage() {
	if r != nil {
		r.stages.Inc()
	}
}

func (r *Registry) IncDrain() {
	if r != nil {
		r.drains.Inc()
	}
}

func (r *Registry) AddDrainedItems(n int) {
	if r != nil {
		r.drainedItems.Add(float64(n))
	}
}

func (r *Registry) AddDuplicates(n int) {
	if r != nil {
		r.duplicates.Add(float64(n))
	}
}

func (r *Registry) IncLazyExpiry() {
	if r != nil {
		r.lazyExpiries.Inc()
	}
}

func (r *Registry) AddSweepRemoved(n int) {
	if r != nil {
		r.sweepRemoved.Add(float64(n))
	}
}
