//nolint:gochecknoglobals // prometheus metrics and global state
package metrics

import (
	"errors"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	ScansTotal = promauto.NewCounterVec(
		prom.CounterOpts{
			Name: "rgb_device_scans_total",
			Help: "Discovery scans by result (Counter). result=ok|sdk_unavailable|aborted.",
		},
		[]string{"service", "result"},
	)
	SlotFailuresTotal = promauto.NewCounterVec(
		prom.CounterOpts{
			Name: "rgb_slot_failures_total",
			Help: "Per-slot build failures during discovery (Counter).",
		},
		[]string{"service", "slot"},
	)
	DevicesGauge = promauto.NewGaugeVec(
		prom.GaugeOpts{
			Name: "rgb_devices",
			Help: "Devices in the currently published collection (Gauge).",
		},
		[]string{"service"},
	)
	ReadyGauge = promauto.NewGaugeVec(
		prom.GaugeOpts{
			Name: "service_ready",
			Help: "Service readiness: 1=ready, 0=not ready (Gauge).",
		},
		[]string{"service"},
	)

	ScanDuration = promauto.NewHistogramVec(prom.HistogramOpts{
		Name:    "rgb_scan_duration_seconds",
		Help:    "Full discovery scan duration in seconds (Histogram).",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	}, []string{"service"})
)

var serviceName atomic.Value // string

// SetService sets the service label value (default: prismd).
func SetService(name string) { serviceName.Store(name) }

func Service() string {
	if v := serviceName.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	return "prismd"
}

// RegisterCollectors registers default Go and process collectors.
// Should be called once during program startup (e.g., in cmd).
func RegisterCollectors() {
	registerDefault(collectors.NewGoCollector())
	registerDefault(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

func registerDefault(c prom.Collector) {
	if err := prom.Register(c); err != nil {
		var are prom.AlreadyRegisteredError
		if errors.As(err, &are) {
			return
		}
		// best-effort: ignore unexpected errors to avoid panics in init
	}
}

// ScanCompleted records one finished discovery scan.
func ScanCompleted(result string, duration time.Duration) {
	service := Service()
	ScansTotal.WithLabelValues(service, result).Inc()
	ScanDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// SlotFailure counts a per-slot build failure.
func SlotFailure(slot string) {
	SlotFailuresTotal.WithLabelValues(Service(), slot).Inc()
}

// SetDevices updates the published-collection gauge.
func SetDevices(count int) {
	DevicesGauge.WithLabelValues(Service()).Set(float64(count))
}

// SetReady updates the readiness gauge.
func SetReady(ready bool) {
	value := 0.0
	if ready {
		value = 1.0
	}

	ReadyGauge.WithLabelValues(Service()).Set(value)
}

func counterValue(c prom.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}

	return m.GetCounter().GetValue()
}

func gaugeValue(g prom.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}

	return m.GetGauge().GetValue()
}

// Snapshot returns current scan counters for the admin info endpoint.
func Snapshot() map[string]any {
	service := Service()

	return map[string]any{
		"scans_ok":              counterValue(ScansTotal.WithLabelValues(service, "ok")),
		"scans_sdk_unavailable": counterValue(ScansTotal.WithLabelValues(service, "sdk_unavailable")),
		"scans_aborted":         counterValue(ScansTotal.WithLabelValues(service, "aborted")),
		"devices":               gaugeValue(DevicesGauge.WithLabelValues(service)),
	}
}
