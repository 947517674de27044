package ordersend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the sender's counters to Prometheus. A nil *Metrics is valid
// and records nothing.
//
// The message and byte counters are always updated. write_latency_nanoseconds
// is only observed when Config.MeasureLatency is set and stays empty otherwise.
type Metrics struct {
	messagesSent    prometheus.Counter
	bytesSent       prometheus.Counter
	connectFailures prometheus.Counter
	writeLatency    prometheus.Histogram
}

func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Total number of orders fully written to the socket",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Total number of bytes written to the socket",
		}),
		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_failures_total",
			Help:      "Total number of failed connection attempts",
		}),
		writeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_latency_nanoseconds",
			Help:      "Duration of a single order write in nanoseconds; only observed with latency measurement enabled",
			Buckets:   []float64{250, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 1000000},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.messagesSent,
		m.bytesSent,
		m.connectFailures,
		m.writeLatency,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) onWrite(n int) {
	if m == nil {
		return
	}
	m.messagesSent.Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) onWriteLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.writeLatency.Observe(float64(d.Nanoseconds()))
}

func (m *Metrics) onConnectFailure() {
	if m == nil {
		return
	}
	m.connectFailures.Inc()
}
