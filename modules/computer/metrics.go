package computer

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for fibonacci_compute_total.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid_argument"
	outcomeOverflow = "overflow"
	outcomeError    = "error"
)

type metrics struct {
	computeTotal    *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
}

// newMetrics registers the compute collectors with reg. Collectors that are
// already registered, for example by a previous module instance, are reused.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fibonacci",
		Name:      "compute_total",
		Help:      "Terms computed, by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fibonacci",
		Name:      "compute_duration_seconds",
		Help:      "Time spent computing a single term.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"strategy"})

	var err error
	if total, err = register(reg, total); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &metrics{computeTotal: total, computeDuration: duration}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
