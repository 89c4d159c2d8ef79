// Package metrics exposes Prometheus instrumentation for the atlas service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	YearsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atlas_years_loaded",
		Help: "Number of years with usable data after the last load",
	})
	YearLoadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_year_load_failures_total",
		Help: "Total years omitted because their data failed to load or was empty",
	})
	YearLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "atlas_year_load_duration_ms",
		Help:    "Per-year fetch and parse duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	ViewSyncsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_view_syncs_total",
		Help: "Total view synchronizations pushed to renderers",
	})
	TargetErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_target_errors_total",
		Help: "Total renderer update failures by target",
	}, []string{"target"})
	PlaybackTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atlas_playback_ticks_total",
		Help: "Total playback timer ticks",
	})
	CurrentYear = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atlas_current_year",
		Help: "Year currently displayed",
	})
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "atlas_commands_total",
		Help: "Total console and control commands by name and result",
	}, []string{"command", "result"})
	ConsoleSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "atlas_console_sessions",
		Help: "Console sessions currently connected",
	})
)

func init() {
	prometheus.MustRegister(YearsLoaded)
	prometheus.MustRegister(YearLoadFailuresTotal)
	prometheus.MustRegister(YearLoadDurationMs)
	prometheus.MustRegister(ViewSyncsTotal)
	prometheus.MustRegister(TargetErrorsTotal)
	prometheus.MustRegister(PlaybackTicksTotal)
	prometheus.MustRegister(CurrentYear)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(ConsoleSessions)
}

// Handler serves the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
