package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"glbridge/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Frames.Add(3)
	m.DrawCalls.WithLabelValues("indexed").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Frames))

	srv := metrics.NewServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "glbridge_frames_total 3")
	assert.Contains(t, string(body), `glbridge_draw_calls_total{mode="indexed"} 1`)
}

func TestDiscardIsIndependent(t *testing.T) {
	a := metrics.Discard()
	b := metrics.Discard()
	a.Frames.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Frames))
}
