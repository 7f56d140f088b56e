package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "xengine"

	SubsystemEngine   = "engine"
	SubsystemContract = "contract"
	SubsystemState    = "state"
	SubsystemCache    = "cache"

	LabelResult   = "result"
	LabelPhase    = "phase"
	LabelExecutor = "executor"
	LabelCache    = "cache"
	LabelHit      = "hit"
)

// engine
var (
	DeployCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEngine,
			Name:      "deploy_total",
			Help:      "Total number of executed deploys by result.",
		},
		[]string{LabelResult})
	DeployHistogram = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemEngine,
			Name:      "deploy_seconds",
			Help:      "Histogram of deploy stage latency.",
			Buckets:   prom.DefBuckets,
		},
		[]string{LabelPhase})
)

// contract
var (
	ContractGasHistogram = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemContract,
			Name:      "gas_used",
			Help:      "Histogram of gas used per execution.",
			Buckets:   prom.ExponentialBuckets(10, 4, 10),
		},
		[]string{LabelExecutor})
)

// state
var (
	StateCommitCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemState,
			Name:      "commit_total",
			Help:      "Total number of global state commits by result.",
		},
		[]string{LabelResult})
	StateCommitHistogram = prom.NewHistogram(
		prom.HistogramOpts{
			Namespace: Namespace,
			Subsystem: SubsystemState,
			Name:      "commit_seconds",
			Help:      "Histogram of global state commit latency.",
			Buckets:   prom.DefBuckets,
		})
	StateHeightGauge = prom.NewGauge(
		prom.GaugeOpts{
			Namespace: Namespace,
			Subsystem: SubsystemState,
			Name:      "height",
			Help:      "Height of the latest committed global state version.",
		})
)

// cache
var (
	CacheLookupCounter = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: Namespace,
			Subsystem: SubsystemCache,
			Name:      "lookup_total",
			Help:      "Total number of cache lookups by cache and hit.",
		},
		[]string{LabelCache, LabelHit})
)

var registerOnce sync.Once

// RegisterMetrics register collectors to the default registry, safe to call more than once
func RegisterMetrics() {
	registerOnce.Do(func() {
		// engine
		prom.MustRegister(DeployCounter)
		prom.MustRegister(DeployHistogram)
		// contract
		prom.MustRegister(ContractGasHistogram)
		// state
		prom.MustRegister(StateCommitCounter)
		prom.MustRegister(StateCommitHistogram)
		prom.MustRegister(StateHeightGauge)
		// cache
		prom.MustRegister(CacheLookupCounter)
	})
}

// CacheLookup record a cache lookup result
func CacheLookup(cache string, hit bool) {
	label := "miss"
	if hit {
		label = "hit"
	}
	CacheLookupCounter.WithLabelValues(cache, label).Inc()
}
