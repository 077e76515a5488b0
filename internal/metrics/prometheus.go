package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type promRecorder struct {
	bands       prometheus.Counter
	radius      prometheus.Histogram
	newClusters prometheus.Counter
	evaluations *prometheus.CounterVec
	runs        *prometheus.CounterVec
	chunks      prometheus.Histogram
}

// NewPrometheus registers sourcing metrics on reg.
func NewPrometheus(reg prometheus.Registerer) Recorder {
	m := &promRecorder{
		bands: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedstock_search_bands_total",
			Help: "Radius bands searched",
		}),
		radius: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedstock_search_radius_meters",
			Help:    "Search radius reached per band",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 9),
		}),
		newClusters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedstock_search_clusters_found_total",
			Help: "Clusters returned by bounding-region queries after circle filtering",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedstock_cluster_evaluations_total",
			Help: "Cluster economics evaluations",
		}, []string{"success"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedstock_runs_total",
			Help: "Completed sourcing runs",
		}, []string{"outcome", "shortfall"}),
		chunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedstock_movein_chunks",
			Help:    "Round-trip calls needed per move-in",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		}),
	}

	reg.MustRegister(m.bands, m.radius, m.newClusters, m.evaluations, m.runs, m.chunks)
	return m
}

func (m *promRecorder) BandSearched(radius float64, newClusters int) {
	m.bands.Inc()
	m.radius.Observe(radius)
	m.newClusters.Add(float64(newClusters))
}

func (m *promRecorder) ClusterEvaluated(ok bool) {
	m.evaluations.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (m *promRecorder) RunFinished(outcome string, shortfall bool) {
	m.runs.WithLabelValues(outcome, strconv.FormatBool(shortfall)).Inc()
}

func (m *promRecorder) MoveInChunks(n int) {
	m.chunks.Observe(float64(n))
}
