// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/water-probe-monitor/internal/monitor"
	"github.com/tamzrod/water-probe-monitor/internal/task"
)

const namespace = "water_probe"

// Metrics holds the collectors for one probe task.
// It implements task.Observer and output.ErrorObserver.
type Metrics struct {
	reg prometheus.Gatherer

	reads               *prometheus.CounterVec
	consecutiveFailures prometheus.Gauge
	faults              *prometheus.CounterVec
	state               prometheus.Gauge
	channels            *prometheus.GaugeVec
	lastMeasurement     prometheus.Gauge
	sinkErrors          *prometheus.CounterVec
}

// New creates and registers the collectors on reg, labelled with the probe name.
func New(reg *prometheus.Registry, probeName string) *Metrics {
	labels := prometheus.Labels{"probe": probeName}

	m := &Metrics{
		reg: reg,
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reads_total",
			Help:        "Register block reads by result (ok, transient, fatal).",
			ConstLabels: labels,
		}, []string{"result"}),
		consecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "consecutive_failures",
			Help:        "Current run of consecutive transient read failures.",
			ConstLabels: labels,
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "faults_total",
			Help:        "Task faults by reason (IO_TIMEOUT is a threshold escalation).",
			ConstLabels: labels,
		}, []string{"reason"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "task_state",
			Help:        "Task lifecycle state (0 uninitialized, 1 ready, 2 running, 3 stopped, 4 faulted).",
			ConstLabels: labels,
		}),
		channels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "measurement",
			Help:        "Last decoded value per probe channel (SI units).",
			ConstLabels: labels,
		}, []string{"channel"}),
		lastMeasurement: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_measurement_timestamp_seconds",
			Help:        "Unix time of the last successful read.",
			ConstLabels: labels,
		}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "sink_errors_total",
			Help:        "Failed sink writes by sink.",
			ConstLabels: labels,
		}, []string{"sink"}),
	}

	reg.MustRegister(
		m.reads,
		m.consecutiveFailures,
		m.faults,
		m.state,
		m.channels,
		m.lastMeasurement,
		m.sinkErrors,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObservePoll implements monitor.Observer.
func (m *Metrics) ObservePoll(o monitor.Outcome, failures int) {
	m.reads.WithLabelValues(o.Kind.String()).Inc()
	m.consecutiveFailures.Set(float64(failures))

	if o.Kind != monitor.KindSuccess {
		return
	}
	for name, v := range o.Measurement.Channels() {
		m.channels.WithLabelValues(name).Set(v)
	}
	m.lastMeasurement.Set(float64(o.Measurement.Time.UnixNano()) / 1e9)
}

// ObserveState implements task.Observer.
func (m *Metrics) ObserveState(s task.State) {
	m.state.Set(float64(s))
}

// ObserveFault implements task.Observer.
func (m *Metrics) ObserveFault(r task.FaultReason) {
	m.faults.WithLabelValues(r.String()).Inc()
}

// ObserveSinkError implements output.ErrorObserver.
func (m *Metrics) ObserveSinkError(sink string, err error) {
	m.sinkErrors.WithLabelValues(sink).Inc()
}
