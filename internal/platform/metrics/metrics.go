// Package metrics owns the Prometheus registry of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sales"

// Registry holds every collector exported on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	VisitsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visits_created_total",
		Help:      "Visits recorded.",
	})

	VisitDuplicates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visit_duplicates_total",
		Help:      "Visit creations refused because an open visit already names the company or contact.",
	})

	CyclesArchived = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_archived_total",
		Help:      "Cycles closed by archival.",
	})

	RecordsArchived = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_archived_total",
		Help:      "Visits moved into an archived cycle.",
	})

	RealtimeEvents = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_published_total",
		Help:      "Change notifications published, by table.",
	}, []string{"table"})

	BackupsWritten = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backups_total",
		Help:      "Backup runs by result (written, skipped, failed).",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
