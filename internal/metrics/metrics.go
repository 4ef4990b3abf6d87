// Package metrics exposes bridge counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "glbridge"

// Metrics groups every collector the bridge updates.
type Metrics struct {
	Frames             prometheus.Counter
	FrameDuration      prometheus.Histogram
	DrawCalls          *prometheus.CounterVec
	Vertices           prometheus.Counter
	Indices            prometheus.Counter
	Clicks             *prometheus.CounterVec
	ClickErrors        prometheus.Counter
	ProtocolViolations prometheus.Counter
	Prints             prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Module frame() calls that returned.",
		}),
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall time of one module frame() call including upload and draw.",
			Buckets:   []float64{.001, .002, .004, .008, .016, .033, .066, .1, .25},
		}),
		DrawCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_calls_total",
			Help:      "Geometry-producing draw calls by mode.",
		}, []string{"mode"}),
		Vertices: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vertices_uploaded_total",
			Help:      "Vertices uploaded to the streaming vertex buffer.",
		}),
		Indices: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indices_uploaded_total",
			Help:      "Indices uploaded to the streaming index buffer.",
		}),
		Clicks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Clicks forwarded to the module by button id.",
		}, []string{"button"}),
		ClickErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "click_errors_total",
			Help:      "Module click() calls that returned an error.",
		}),
		ProtocolViolations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Draw requests that referenced memory outside the module's bounds.",
		}),
		Prints: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_prints_total",
			Help:      "Diagnostic print calls made by the module.",
		}),
	}
}

// Discard returns collectors registered nowhere.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}

// NewServer serves g on /metrics.
func NewServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
