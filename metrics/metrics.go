// Package metrics records Prometheus metrics for calls made by the API
// client. RequestMetrics plugs into apiclient as its Observer.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "authclient"

var _ apiclient.Observer = (*RequestMetrics)(nil)

// RequestMetrics holds the per-request collectors.
type RequestMetrics struct {
	// RequestsTotal counts finished requests.
	// Labels:
	//   - method: HTTP method
	//   - outcome: ok, http, timeout, network or canceled
	//   - status: HTTP status, "0" when no response arrived
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures wall time from send to terminal outcome.
	RequestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates the collectors and registers them with reg.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	f := promauto.With(reg)
	return &RequestMetrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of backend API requests, by method, outcome and status.",
			},
			[]string{"method", "outcome", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of backend API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
	}
}

func (m *RequestMetrics) ObserveRequest(method, _ string, outcome apiclient.Kind, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, outcome.String(), strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, outcome.String()).Observe(elapsed.Seconds())
}

// WriteSummary prints every counter in g as "name{labels} value", sorted.
func WriteSummary(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("[metrics WriteSummary] gather: %w", err)
	}

	var lines []string
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), labelString(m.GetLabel()), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return strings.Join(parts, ",")
}
