package metrics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider adapts Provider to prometheus/client_golang.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with default buckets. Instrument
// descriptions become help strings and attributes become constant labels.
type PrometheusProvider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	collectors map[string]prometheus.Collector
}

// NewPrometheusProvider registers instruments with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{
		reg:        reg,
		collectors: make(map[string]prometheus.Collector),
	}
}

// register returns the collector already known under name, or builds and registers a new one.
// If reg already holds an equal collector (e.g. a second pool sharing a registry), that one is reused.
// Any other registration failure panics, as prometheus.MustRegister does.
func register[T prometheus.Collector](p *PrometheusProvider, name string, build func() T) T {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.collectors[name].(T); ok {
		return c
	}

	c := build()
	if err := p.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			panic(fmt.Errorf("metrics: %s is already registered as %T", name, are.ExistingCollector))
		}
		c = existing
	}
	p.collectors[name] = c
	return c
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

// Counter returns a prometheus-backed monotonic counter.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	c := register(p, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	})
	return promCounter{c: c}
}

// UpDownCounter returns a prometheus-backed gauge.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	g := register(p, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	})
	return promGauge{g: g}
}

// Histogram returns a prometheus-backed histogram with prometheus.DefBuckets.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	h := register(p, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
			Buckets:     prometheus.DefBuckets,
		})
	})
	return promHistogram{h: h}
}

type promCounter struct{ c prometheus.Counter }

// Add ignores negative deltas; prometheus counters panic on them.
func (pc promCounter) Add(n int64) {
	if n < 0 {
		return
	}
	pc.c.Add(float64(n))
}

type promGauge struct{ g prometheus.Gauge }

func (pg promGauge) Add(n int64) { pg.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (ph promHistogram) Record(v float64) { ph.h.Observe(v) }
