package kdf

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

var (
	deriveTotal    *prometheus.CounterVec
	deriveDuration prometheus.Histogram

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics registers the derivation metrics with the default Prometheus
// registry. Call once at startup if metrics are enabled; without it every
// record call is a no-op.
func InitMetrics() {
	metricsOnce.Do(func() {
		deriveTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultkey_derive_total",
				Help: "Total number of key derivation attempts",
			},
			[]string{"status"},
		)

		deriveDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vaultkey_derive_duration_seconds",
				Help:    "Duration of key derivation operations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		)

		metricsRegistered = true
	})
}

func observeDerive(ok bool, elapsed time.Duration) {
	if !metricsRegistered {
		return
	}

	status := "success"
	if !ok {
		status = "error"
	}
	if deriveTotal != nil {
		deriveTotal.WithLabelValues(status).Inc()
	}
	if ok && deriveDuration != nil {
		deriveDuration.Observe(elapsed.Seconds())
	}
}

// DumpMetrics writes the recorded derivation metrics to w in the Prometheus
// text exposition format. A long-running service would serve these over
// HTTP; a one-shot CLI process dumps them on exit instead. A no-op when
// metrics were never initialized.
func DumpMetrics(w io.Writer) error {
	if !metricsRegistered {
		return nil
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		// The default registry also carries go_* and process_* collectors;
		// only the derivation metrics are ours to report.
		if !strings.HasPrefix(mf.GetName(), "vaultkey_") {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
