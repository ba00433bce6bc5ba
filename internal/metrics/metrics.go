// Package metrics exposes Prometheus counters for the client's remote
// interactions. The registry is owned here so tests never fight over the
// global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	LoginAttempts  prometheus.Counter
	LoginFailures  prometheus.Counter
	SearchesIssued prometheus.Counter
	SearchFailures prometheus.Counter
	StaleDropped   prometheus.Counter
	PrintsIssued   prometheus.Counter
	PrintFailures  prometheus.Counter
	LabelsPrinted  prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	loginAttempts := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_login_attempts_total"})
	loginFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_login_failures_total"})
	searchesIssued := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_searches_issued_total"})
	searchFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_search_failures_total"})
	staleDropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_search_stale_responses_dropped_total"})
	printsIssued := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_prints_issued_total"})
	printFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_print_failures_total"})
	labelsPrinted := prometheus.NewCounter(prometheus.CounterOpts{Name: "labelpress_labels_printed_total"})

	r.MustRegister(loginAttempts, loginFailures, searchesIssued, searchFailures,
		staleDropped, printsIssued, printFailures, labelsPrinted)

	return &Registry{
		reg:            r,
		LoginAttempts:  loginAttempts,
		LoginFailures:  loginFailures,
		SearchesIssued: searchesIssued,
		SearchFailures: searchFailures,
		StaleDropped:   staleDropped,
		PrintsIssued:   printsIssued,
		PrintFailures:  printFailures,
		LabelsPrinted:  labelsPrinted,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
