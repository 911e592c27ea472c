package tenantdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records connection lifecycle events. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	opens    *prometheus.CounterVec
	closes   prometheus.Counter
	active   prometheus.Gauge
	duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webix",
			Subsystem: "tenantdb",
			Name:      "opens_total",
			Help:      "Tenant database open attempts by result.",
		}, []string{"result"}),
		closes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "webix",
			Subsystem: "tenantdb",
			Name:      "closes_total",
			Help:      "Tenant database connections closed.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "webix",
			Subsystem: "tenantdb",
			Name:      "connections_active",
			Help:      "Tenant database connections currently registered.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "webix",
			Subsystem: "tenantdb",
			Name:      "open_duration_seconds",
			Help:      "Time spent opening tenant databases.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.opens, m.closes, m.active, m.duration)
	return m
}

func (m *Metrics) opened(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.opens.WithLabelValues("error").Inc()
		return
	}
	m.opens.WithLabelValues("ok").Inc()
	m.active.Inc()
}

func (m *Metrics) closed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.closes.Add(float64(n))
	m.active.Sub(float64(n))
}
