// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus collectors for backend queries and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BackendQueries  *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	RoleLookups     *prometheus.CounterVec
}

// New creates a registry with Go runtime collectors plus the site collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		BackendQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diocese",
			Name:      "backend_queries_total",
			Help:      "Backend operations by table, operation and result.",
		}, []string{"table", "op", "result"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "diocese",
			Name:      "backend_query_duration_seconds",
			Help:      "Backend operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table", "op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diocese",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		RoleLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "diocese",
			Name:      "role_lookups_total",
			Help:      "Role resolutions by source (cache, backend) and outcome.",
		}, []string{"source", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BackendQueries,
		m.BackendDuration,
		m.HTTPRequests,
		m.RoleLookups,
	)

	return m
}

// ObserveQuery records one backend operation started at start.
// notFound marks an expected absence, which is not counted as an error.
func (m *Metrics) ObserveQuery(table, op string, start time.Time, err error, notFound error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case notFound != nil && errors.Is(err, notFound):
		result = "not_found"
	default:
		result = "error"
	}
	m.BackendQueries.WithLabelValues(table, op, result).Inc()
	m.BackendDuration.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}

// ObserveRoleLookup records where a role came from and what it resolved to.
func (m *Metrics) ObserveRoleLookup(source, outcome string) {
	if m == nil {
		return
	}
	m.RoleLookups.WithLabelValues(source, outcome).Inc()
}

// Middleware counts requests by chi route pattern so that slugs do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
