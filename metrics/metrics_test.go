package metrics_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/internal/testbackend"
	"github.com/jrsteele09/go-auth-client/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRequestMetrics(reg)

	b := testbackend.New(t)
	c := apiclient.New(b.URL(), apiclient.WithObserver(m))
	ctx := context.Background()

	_, err := c.Request(ctx, "/api/echo", apiclient.RequestOptions{})
	require.NoError(t, err)
	_, err = c.Request(ctx, "/api/echo", apiclient.RequestOptions{})
	require.NoError(t, err)
	_, err = c.Request(ctx, "/api/status/404", apiclient.RequestOptions{})
	require.Error(t, err)
	_, err = c.Request(ctx, "/api/slow", apiclient.RequestOptions{Timeout: 20 * time.Millisecond})
	require.Error(t, err)

	require.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "ok", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "http", "404")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "timeout", "0")))
	require.Equal(t, 3, testutil.CollectAndCount(m.RequestsTotal))
}

func TestWriteSummary(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewRequestMetrics(reg)
	m.ObserveRequest("POST", "/api/auth/login", apiclient.KindNone, 200, 10*time.Millisecond)
	m.ObserveRequest("POST", "/api/auth/login", apiclient.KindNetwork, 0, time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, metrics.WriteSummary(&buf, reg))

	require.Equal(t,
		"authclient_requests_total{method=\"POST\",outcome=\"network\",status=\"0\"} 1\n"+
			"authclient_requests_total{method=\"POST\",outcome=\"ok\",status=\"200\"} 1\n",
		buf.String())
}
