package rxws

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the traffic of a client's event stream. A nil *Metrics records nothing.
type Metrics struct {
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event_stream",
			Name:      "published_total",
			Help:      "Events delivered to at least one subscriber, by kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event_stream",
			Name:      "dropped_total",
			Help:      "Events discarded because no subscriber was attached, by kind.",
		}, []string{"kind"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "event_stream",
			Name:      "subscribers",
			Help:      "Subscribers currently attached to the event stream.",
		}),
	}

	for _, c := range []prometheus.Collector{m.published, m.dropped, m.subscribers} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) eventPublished(e Event) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(e.Kind().String()).Inc()
}

func (m *Metrics) eventDropped(e Event) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(e.Kind().String()).Inc()
}

func (m *Metrics) subscribersChanged(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
