// Package observability holds the Prometheus instrumentation shared across
// the application services and the document store.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every counter the backend emits. Services receive the
// whole bundle; tests use NewNoop for an isolated registry.
type Metrics struct {
	StoreWrites         prometheus.Counter
	BackupsCreated      prometheus.Counter
	BackupsPruned       prometheus.Counter
	BackupFailures      prometheus.Counter
	SubmissionsIngested prometheus.Counter
	ParseFailures       prometheus.Counter
	JudgmentsSaved      prometheus.Counter
	EventsPublished     *prometheus.CounterVec
}

// NewMetrics registers the full counter set on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoreWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_store_writes_total",
			Help: "Primary dataset file writes.",
		}),
		BackupsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_backups_created_total",
			Help: "Backup snapshots written before dataset mutations.",
		}),
		BackupsPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_backups_pruned_total",
			Help: "Backup files deleted by FIFO retention.",
		}),
		BackupFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_backup_failures_total",
			Help: "Backup snapshot attempts that failed (non-fatal to writes).",
		}),
		SubmissionsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_submissions_ingested_total",
			Help: "Submissions accepted through the ingestion pipeline.",
		}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_multipart_parse_failures_total",
			Help: "Request bodies rejected by the multipart parser.",
		}),
		JudgmentsSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "wingshot_judgments_saved_total",
			Help: "Head-to-head judgments recorded.",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wingshot_events_published_total",
			Help: "Domain events published on the in-process bus.",
		}, []string{"topic"}),
	}
}

// NewNoop returns a bundle backed by a throwaway registry, for tests.
func NewNoop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
