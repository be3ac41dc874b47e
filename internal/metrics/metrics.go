// Package metrics exposes Prometheus counters for account, contact and lookup
// activity, and an optional /metrics endpoint.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	accountOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactkeeper_account_operations_total",
		Help: "Account operations by kind and result",
	}, []string{"op", "result"})

	contactOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactkeeper_contact_operations_total",
		Help: "Contact directory operations by kind and result",
	}, []string{"op", "result"})

	lookupRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactkeeper_lookup_requests_total",
		Help: "Outbound address/geocode requests by service and result",
	}, []string{"service", "result"})

	lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contactkeeper_lookup_request_duration_seconds",
		Help:    "Duration of outbound address/geocode requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	locateResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contactkeeper_locate_contacts_total",
		Help: "Contacts processed by batch geolocation by outcome",
	}, []string{"outcome"})
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveAccount counts an account operation (register, login, ...).
func ObserveAccount(op string, err error) {
	accountOps.WithLabelValues(op, result(err)).Inc()
}

// ObserveContact counts a contact directory operation.
func ObserveContact(op string, err error) {
	contactOps.WithLabelValues(op, result(err)).Inc()
}

// ObserveLookup records one outbound request to service ("viacep", "geocode").
func ObserveLookup(service string, err error, d time.Duration) {
	lookupRequests.WithLabelValues(service, result(err)).Inc()
	lookupDuration.WithLabelValues(service).Observe(d.Seconds())
}

// ObserveLocate adds n contacts with the given outcome (located, skipped, failed).
func ObserveLocate(outcome string, n int) {
	if n <= 0 {
		return
	}
	locateResults.WithLabelValues(outcome).Add(float64(n))
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
