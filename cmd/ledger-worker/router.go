package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledger/internal/amqp"
)

// newRouter serves liveness, readiness and the registry's metrics.
func newRouter(reg *prometheus.Registry, ready func() bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready() {
			http.Error(w, "store not initialized", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return r
}

// countEvents records the outcome of every handled event.
func countEvents(reg prometheus.Registerer, next amqp.Handler) amqp.Handler {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledger",
		Subsystem: "worker",
		Name:      "events_total",
		Help:      "Bill events handled by kind and result.",
	}, []string{"kind", "result"})
	reg.MustRegister(events)

	return func(ctx context.Context, e *amqp.BillEvent) error {
		err := next(ctx, e)
		result := "ok"
		if err != nil {
			result = "error"
		}
		events.WithLabelValues(string(e.Kind), result).Inc()
		return err
	}
}
