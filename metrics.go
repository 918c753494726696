package depload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type StartHook func(name string, duration time.Duration, err error)

type StopHook func(name string, duration time.Duration, err error)

type StatusHook func(from, to Status)

// PrometheusObserver exports per service start and stop timings.
type PrometheusObserver struct {
	startDuration *prometheus.HistogramVec
	stopDuration  *prometheus.HistogramVec
	failures      *prometheus.CounterVec
	status        *prometheus.GaugeVec
}

func NewPrometheusObserver(reg prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		startDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "depload",
				Name:      "service_start_duration_seconds",
				Help:      "Time spent constructing and initializing a service.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		stopDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "depload",
				Name:      "service_stop_duration_seconds",
				Help:      "Time spent destroying a service.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "depload",
				Name:      "service_failures_total",
				Help:      "Failed service starts and stops.",
			},
			[]string{"service", "phase"},
		),
		status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "depload",
				Name:      "container_status",
				Help:      "Current container status, 1 for the active value.",
			},
			[]string{"status"},
		),
	}

	for _, c := range []prometheus.Collector{o.startDuration, o.stopDuration, o.failures, o.status} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return o, nil
}

func (o *PrometheusObserver) ObserveStart(name string, duration time.Duration, err error) {
	o.startDuration.WithLabelValues(name).Observe(duration.Seconds())
	if err != nil {
		o.failures.WithLabelValues(name, "start").Inc()
	}
}

func (o *PrometheusObserver) ObserveStop(name string, duration time.Duration, err error) {
	o.stopDuration.WithLabelValues(name).Observe(duration.Seconds())
	if err != nil {
		o.failures.WithLabelValues(name, "stop").Inc()
	}
}

func (o *PrometheusObserver) ObserveStatus(from, to Status) {
	o.status.WithLabelValues(string(from)).Set(0)
	o.status.WithLabelValues(string(to)).Set(1)
}

// Options wires the observer into a container.
func (o *PrometheusObserver) Options() []Option {
	return []Option{
		WithStartObserver(o.ObserveStart),
		WithStopObserver(o.ObserveStop),
		WithStatusObserver(o.ObserveStatus),
	}
}
