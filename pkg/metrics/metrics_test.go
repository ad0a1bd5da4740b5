package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New("")
	m.CallStarted("inbound")
	m.CallStarted("inbound")
	m.Turn("appointments", SourceTemplate)
	m.Request("/health", "200")
	m.SetActiveCalls(3)
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()
	m.ObserveCompletion(300 * time.Millisecond)
	m.SynthesisFailed("deepgram")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls.WithLabelValues("inbound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues("appointments", SourceTemplate)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveStreams))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SynthesisErrors.WithLabelValues("deepgram")))
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New("test")
	m.Turn("general", SourceLLM)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_turns_total{intent="general",source="llm"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CallStarted("outbound")
		m.Turn("x", "y")
		m.Request("/", "200")
		m.SetActiveCalls(1)
		m.StreamOpened()
		m.StreamClosed()
		m.ObserveCompletion(time.Second)
		m.SynthesisFailed("polly")
	})
}
