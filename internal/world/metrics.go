package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus instruments. A nil registerer
// backs the metrics with a private registry, which keeps tests
// independent of global state.
type Metrics struct {
	ChunksGenerated    prometheus.Counter
	ChunkRetries       prometheus.Counter
	ChunksFailed       prometheus.Counter
	ChunksGenerating   prometheus.Gauge
	BlocksPlaced       prometheus.Counter
	BlocksRemoved      prometheus.Counter
	InsertConflicts    prometheus.Counter
	ReconcileEvictions prometheus.Counter
	GenerateDuration   prometheus.Histogram
	MeshDuration       prometheus.Histogram
}

// NewMetrics creates and registers the engine metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		ChunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "chunks_generated_total",
			Help:      "Chunks that reached the generated state.",
		}),
		ChunkRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "chunk_retries_total",
			Help:      "Chunk generation attempts retried after an error.",
		}),
		ChunksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "chunks_failed_total",
			Help:      "Chunks abandoned after exhausting generation retries.",
		}),
		ChunksGenerating: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelforge",
			Name:      "chunks_generating",
			Help:      "Chunks currently claimed by a generation worker.",
		}),
		BlocksPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "blocks_placed_total",
			Help:      "Blocks placed by the player.",
		}),
		BlocksRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "blocks_removed_total",
			Help:      "Blocks removed by the player.",
		}),
		InsertConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "insert_conflicts_total",
			Help:      "Generation inserts rejected by an occupied cell.",
		}),
		ReconcileEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelforge",
			Name:      "reconcile_evictions_total",
			Help:      "Index entries evicted by reconciliation.",
		}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelforge",
			Name:      "chunk_generate_seconds",
			Help:      "Wall time of one chunk generation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		MeshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxelforge",
			Name:      "chunk_mesh_seconds",
			Help:      "Wall time of one chunk meshing pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
	reg.MustRegister(
		m.ChunksGenerated, m.ChunkRetries, m.ChunksFailed, m.ChunksGenerating,
		m.BlocksPlaced, m.BlocksRemoved, m.InsertConflicts, m.ReconcileEvictions,
		m.GenerateDuration, m.MeshDuration,
	)
	return m
}
