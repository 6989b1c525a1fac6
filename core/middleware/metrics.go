/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fabric-rest/assetgw/common/metrics"
)

var (
	requestDuration = metrics.HistogramOpts{
		Namespace:  "http",
		Name:       "request_duration",
		Help:       "The time to complete an HTTP request.",
		LabelNames: []string{"route", "method", "code"},
		Buckets:    []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
	requestsCompleted = metrics.CounterOpts{
		Namespace:  "http",
		Name:       "requests_completed",
		Help:       "The number of completed HTTP requests.",
		LabelNames: []string{"route", "method", "code"},
	}
)

// RouteFunc names the route of a request for metric labels.
type RouteFunc func(*http.Request) string

type requestMetrics struct {
	route    RouteFunc
	duration metrics.Histogram
	count    metrics.Counter
	next     http.Handler
}

// WithMetrics records the duration and outcome of every request. Requests
// are labelled with the name returned by route, or the URL path when route
// is nil.
func WithMetrics(provider metrics.Provider, route RouteFunc) Middleware {
	duration := provider.NewHistogram(requestDuration)
	count := provider.NewCounter(requestsCompleted)
	if route == nil {
		route = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return &requestMetrics{route: route, duration: duration, count: count, next: next}
	}
}

func (m *requestMetrics) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	startTime := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

	m.next.ServeHTTP(sw, req)

	labels := []string{"route", m.route(req), "method", req.Method, "code", strconv.Itoa(sw.code)}
	m.duration.With(labels...).Observe(time.Since(startTime).Seconds())
	m.count.With(labels...).Add(1)
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
