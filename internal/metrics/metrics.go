package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds only this service's collectors plus the Go runtime ones.
	Registry = prometheus.NewRegistry()

	debugMode = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "payment",
		Subsystem: "plugin",
		Name:      "debug_mode",
		Help:      "1 when the plugin targets sandbox endpoints, 0 for production.",
	}, []string{"platform"})

	debugChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payment",
		Subsystem: "plugin",
		Name:      "debug_changes_total",
		Help:      "Number of debug mode switches applied, by origin.",
	}, []string{"platform", "source"})
)

func init() {
	Registry.MustRegister(
		debugMode,
		debugChanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveDebug records the current mode of a plugin.
func ObserveDebug(platform string, debug bool) {
	v := 0.0
	if debug {
		v = 1
	}
	debugMode.WithLabelValues(platform).Set(v)
}

func RecordDebugChange(platform, source string) {
	debugChanges.WithLabelValues(platform, source).Inc()
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
