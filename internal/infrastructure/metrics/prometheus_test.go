package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest(OutcomeSuccess, 120*time.Millisecond)
	r.ObserveRequest(OutcomeSuccess, 80*time.Millisecond)
	r.ObserveRequest(OutcomeFailure, time.Second)
	r.ObserveHistoryLength(3)
	r.ObserveCacheLookup(true)
	r.ObserveCacheLookup(false)
	r.ObserveCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.historyLength))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveRequest(OutcomeSuccess, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `recogaize_caption_requests_total{outcome="success"} 1`))
}
