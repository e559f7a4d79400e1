// Package metrics exposes contest activity as Prometheus metrics.
package metrics

import (
	"github.com/erilali/spamcontest/internal/contest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "spamcontest"

// Collector records contest lifecycle events. It implements contest.Observer.
type Collector struct {
	contest.NopObserver

	registry        *prometheus.Registry
	started         prometheus.Counter
	finished        *prometheus.CounterVec
	messagesCounted prometheus.Counter
	racesLost       prometheus.Counter
	active          prometheus.Gauge
	duration        prometheus.Histogram
}

// New registers the contest metrics plus the Go runtime and process collectors on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contests_started_total",
			Help:      "Contests whose announcement was posted.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contests_finished_total",
			Help:      "Contests that ended, by outcome.",
		}, []string{"outcome"}),
		messagesCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_counted_total",
			Help:      "Messages tallied by running contests.",
		}),
		racesLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "start_races_lost_total",
			Help:      "Trigger messages that found their channel already claimed.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_contests",
			Help:      "Contests currently collecting messages.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contest_duration_seconds",
			Help:      "Requested duration of started contests.",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1800, 3600},
		}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.started, c.finished, c.messagesCounted, c.racesLost, c.active, c.duration,
	)
	return c
}

// Registry is what the /metrics handler serves.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ContestStarted(info contest.Info) {
	c.started.Inc()
	c.active.Inc()
	c.duration.Observe(info.Duration.Seconds())
}

func (c *Collector) MessageCounted(contest.Info, contest.Message) {
	c.messagesCounted.Inc()
}

func (c *Collector) ContestFinished(_ contest.Info, result contest.Result) {
	c.active.Dec()
	c.finished.WithLabelValues(string(result.Outcome)).Inc()
}

func (c *Collector) StartRaceLost(contest.ChannelID) {
	c.racesLost.Inc()
}
