// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	CollectionSize    prometheus.Gauge
	ConnectedSessions prometheus.Gauge
	MutationsTotal    prometheus.Counter
	QueriesTotal      prometheus.Counter
	SaveFailures      prometheus.Counter
	SaveDuration      prometheus.Histogram
	LookupLatency     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		CollectionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_size",
			Help:      "Number of games in the collection",
		}),
		ConnectedSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_sessions",
			Help:      "Number of connected UI sessions",
		}),
		MutationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Total number of collection mutations",
		}),
		QueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of list queries served",
		}),
		SaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_failures_total",
			Help:      "Total number of failed persistence saves",
		}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Persistence save latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
		LookupLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_latency_seconds",
			Help:      "Metadata lookup latency",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.CollectionSize,
		m.ConnectedSessions,
		m.MutationsTotal,
		m.QueriesTotal,
		m.SaveFailures,
		m.SaveDuration,
		m.LookupLatency,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("requests", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.requestCount
	}))
	mux.Handle("/debug/vars", expvar.Handler())

	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) SetCollectionSize(count int) {
	m.metrics.CollectionSize.Set(float64(count))
}

func (m *Monitor) SetConnectedSessions(count int) {
	m.metrics.ConnectedSessions.Set(float64(count))
}

func (m *Monitor) IncMutations() {
	m.metrics.MutationsTotal.Inc()
	m.countRequest()
}

func (m *Monitor) IncQueries() {
	m.metrics.QueriesTotal.Inc()
	m.countRequest()
}

func (m *Monitor) ObserveSave(duration time.Duration, err error) {
	m.metrics.SaveDuration.Observe(duration.Seconds())
	if err != nil {
		m.metrics.SaveFailures.Inc()
	}
}

func (m *Monitor) ObserveLookupLatency(duration time.Duration) {
	m.metrics.LookupLatency.Observe(duration.Seconds())
}

func (m *Monitor) countRequest() {
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}
