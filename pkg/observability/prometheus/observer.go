package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskpoolio/taskpool/pkg/pool"
)

// PoolObserver adapts a Metrics collection to the pool.Observer
// interface so pools report into Prometheus without the core package
// importing a metrics backend.
type PoolObserver struct {
	m *Metrics
}

var _ pool.Observer = (*PoolObserver)(nil)

// NewPoolObserver creates an observer backed by the given metrics.
// A nil metrics collection uses the global one.
func NewPoolObserver(m *Metrics) *PoolObserver {
	if m == nil {
		m = GetMetrics()
	}
	return &PoolObserver{m: m}
}

// TaskSubmitted implements pool.Observer
func (o *PoolObserver) TaskSubmitted(poolName string) {
	o.m.TasksSubmitted.WithLabelValues(poolName).Inc()
}

// TaskDone implements pool.Observer
func (o *PoolObserver) TaskDone(poolName string, d time.Duration, err error) {
	o.m.TaskDuration.WithLabelValues(poolName).Observe(d.Seconds())
	if err != nil {
		o.m.TasksFailed.WithLabelValues(poolName).Inc()
		o.m.TasksCompleted.WithLabelValues(poolName, "failed").Inc()
		return
	}
	o.m.TasksCompleted.WithLabelValues(poolName, "success").Inc()
}

// QueueDepth implements pool.Observer
func (o *PoolObserver) QueueDepth(poolName string, depth int) {
	o.m.QueueDepth.WithLabelValues(poolName).Set(float64(depth))
}

// WorkerCount implements pool.Observer
func (o *PoolObserver) WorkerCount(poolName string, count int) {
	o.m.WorkerCount.WithLabelValues(poolName).Set(float64(count))
}

// Handler returns an http.Handler exposing the default registry,
// suitable for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
