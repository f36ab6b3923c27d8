package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/trialcore/internal/trial"
)

// Collector reports the trials it has observed: how many sit in each status,
// how many are infeasible, and how long the finished ones took.
type Collector struct {
	mu         sync.Mutex
	byStatus   map[trial.Status]int
	infeasible int

	recordsDesc    *prometheus.Desc
	infeasibleDesc *prometheus.Desc
	duration       prometheus.Histogram
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		byStatus: make(map[trial.Status]int),
		recordsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "records"),
			"Number of observed trials, by status.",
			[]string{"status"}, nil,
		),
		infeasibleDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "records_infeasible"),
			"Number of observed trials marked infeasible.",
			nil, nil,
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Time between creation and completion of observed trials.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

// Observe records t. Observing the same trial twice counts it twice.
func (c *Collector) Observe(t *trial.Trial) {
	if t == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byStatus[t.Status()]++
	if t.Infeasible() {
		c.infeasible++
	}
	if d, ok := t.Duration(); ok && d >= 0 {
		c.duration.Observe(d.Seconds())
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.recordsDesc
	ch <- c.infeasibleDesc
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector. Every defined status is reported,
// including those with no trials.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range trial.Statuses() {
		ch <- prometheus.MustNewConstMetric(c.recordsDesc, prometheus.GaugeValue, float64(c.byStatus[s]), s.String())
	}
	ch <- prometheus.MustNewConstMetric(c.infeasibleDesc, prometheus.GaugeValue, float64(c.infeasible))
	c.duration.Collect(ch)
}
