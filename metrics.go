package bore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricIndexFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bore_index_files",
		Help: "The number of files in the loaded index",
	})
	metricIndexProjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bore_index_projects",
		Help: "The number of projects in the loaded index",
	})
	metricLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bore_loads_total",
		Help: "The total number of solution loads",
	})
	metricLoadFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bore_load_failed_total",
		Help: "The total number of solution loads that failed",
	})
	metricLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bore_load_duration_seconds",
		Help:    "The duration a solution load took in seconds",
		Buckets: prometheus.DefBuckets,
	})

	metricSearchRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bore_search_running",
		Help: "The number of concurrent search requests running",
	})
	metricSearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bore_search_duration_seconds",
		Help:    "The duration a search request took in seconds",
		Buckets: prometheus.DefBuckets,
	})
	metricSearchFilesConsideredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bore_search_files_considered_total",
		Help: "Total number of files claimed from the dispenser",
	})
	metricSearchFilesLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bore_search_files_loaded_total",
		Help: "Total files whose content was read and scanned",
	})
	metricSearchContentBytesLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bore_search_content_loaded_bytes_total",
		Help: "Total amount of I/O for reading contents",
	})
	metricSearchMatchCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bore_search_match_count_total",
		Help: "Total number of matches returned",
	})
)
