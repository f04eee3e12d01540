package world

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelforge/internal/config"
	"voxelforge/internal/profiling"
)

// ChunkState is a chunk's position in the generation lifecycle.
type ChunkState uint8

const (
	// Unseen chunks have never been scheduled. Absent map entries mean
	// Unseen; the zero value exists so lookups read naturally.
	Unseen ChunkState = iota
	// Generating chunks are claimed by exactly one worker.
	Generating
	// Generated chunks are fully populated.
	Generated
	// Failed chunks exhausted their generation attempts.
	Failed
)

func (s ChunkState) String() string {
	switch s {
	case Generating:
		return "generating"
	case Generated:
		return "generated"
	case Failed:
		return "failed"
	default:
		return "unseen"
	}
}

const (
	jobQueueSize           = 1024
	maxGenerationAttempts  = 3
	reconcileInterval      = 5 * time.Second
	reconcileRadiusPadding = 1
)

// Scheduler drives chunk generation around the player. A fixed worker
// pool drains a job queue; claiming happens at enqueue time under the
// state lock, so a chunk enters Generating exactly once no matter how
// many ticks observe it as Unseen.
type Scheduler struct {
	generator *Generator
	settings  *config.Settings
	index     *BlockIndex
	metrics   *Metrics
	log       *slog.Logger

	// onGenerated runs on the worker goroutine after a chunk reaches
	// Generated, before the state flips. Set once before Start.
	onGenerated func(ChunkCoord, *ChunkBlockMap)

	mu       sync.Mutex
	states   map[ChunkCoord]ChunkState
	attempts map[ChunkCoord]int
	closed   bool

	jobs chan ChunkCoord
	wg   sync.WaitGroup

	lastReconcile time.Time
}

// NewScheduler creates a scheduler with runtime.NumCPU workers.
func NewScheduler(gen *Generator, settings *config.Settings, index *BlockIndex, metrics *Metrics, log *slog.Logger, onGenerated func(ChunkCoord, *ChunkBlockMap)) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{
		generator:   gen,
		settings:    settings,
		index:       index,
		metrics:     metrics,
		log:         log,
		onGenerated: onGenerated,
		states:      make(map[ChunkCoord]ChunkState),
		attempts:    make(map[ChunkCoord]int),
		jobs:        make(chan ChunkCoord, jobQueueSize),
	}
	workers := runtime.NumCPU()
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// Tick schedules every ungenerated chunk within the generation distance
// of the player. The chunk under the player is generated synchronously
// so the ground beneath the spawn point exists before the tick returns;
// the surrounding ring goes through the queue.
func (s *Scheduler) Tick(playerPos mgl32.Vec3) {
	defer profiling.Track("world.SchedulerTick")()

	center := ChunkFromWorld(playerPos)
	radius := s.settings.GetGenerationDistance()

	if s.claim(center) {
		s.run(center)
	}

	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			coord := ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			if coord != center {
				s.claimAndEnqueue(coord)
			}
		}
	}

	s.maybeReconcile(center, radius)
}

// claim transitions a chunk from Unseen to Generating. Returns false
// when the chunk is already claimed, generated, failed, or the
// scheduler is closed.
func (s *Scheduler) claim(coord ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.states[coord] != Unseen {
		return false
	}
	s.states[coord] = Generating
	if s.metrics != nil {
		s.metrics.ChunksGenerating.Inc()
	}
	return true
}

// claimAndEnqueue claims a chunk and hands it to the worker pool as
// one locked step, so the queue can never be fed after Close. A full
// queue leaves the chunk Unseen for a later tick.
func (s *Scheduler) claimAndEnqueue(coord ChunkCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.states[coord] != Unseen {
		return
	}
	select {
	case s.jobs <- coord:
		s.states[coord] = Generating
		if s.metrics != nil {
			s.metrics.ChunksGenerating.Inc()
		}
	default:
	}
}

// finish records the outcome of one generation attempt.
func (s *Scheduler) finish(coord ChunkCoord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.ChunksGenerating.Dec()
	}
	if err == nil {
		s.states[coord] = Generated
		delete(s.attempts, coord)
		if s.metrics != nil {
			s.metrics.ChunksGenerated.Inc()
		}
		return
	}
	s.attempts[coord]++
	if s.attempts[coord] >= maxGenerationAttempts {
		s.states[coord] = Failed
		delete(s.attempts, coord)
		if s.metrics != nil {
			s.metrics.ChunksFailed.Inc()
		}
		s.log.Error("chunk generation abandoned",
			"chunk_x", coord.X, "chunk_z", coord.Z, "err", err)
		return
	}
	// Back to Unseen; a later tick re-claims it.
	delete(s.states, coord)
	if s.metrics != nil {
		s.metrics.ChunkRetries.Inc()
	}
	s.log.Warn("chunk generation failed, will retry",
		"chunk_x", coord.X, "chunk_z", coord.Z,
		"attempt", s.attempts[coord], "err", err)
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for coord := range s.jobs {
		s.run(coord)
	}
}

// run executes one generation attempt for an already-claimed chunk.
func (s *Scheduler) run(coord ChunkCoord) {
	blocks, err := s.generator.Generate(coord)
	if err == nil && s.onGenerated != nil {
		s.onGenerated(coord, blocks)
	}
	s.finish(coord, err)
}

// State returns the chunk's lifecycle state.
func (s *Scheduler) State(coord ChunkCoord) ChunkState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[coord]
}

// RadiusGenerated reports whether every chunk within the Chebyshev
// radius of center has reached Generated. Failed chunks count as done
// so one bad chunk cannot wedge readiness forever.
func (s *Scheduler) RadiusGenerated(center ChunkCoord, radius int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			st := s.states[ChunkCoord{X: center.X + dx, Z: center.Z + dz}]
			if st != Generated && st != Failed {
				return false
			}
		}
	}
	return true
}

// maybeReconcile runs a rate-limited index reconciliation over the
// active area.
func (s *Scheduler) maybeReconcile(center ChunkCoord, radius int) {
	s.mu.Lock()
	if time.Since(s.lastReconcile) < reconcileInterval {
		s.mu.Unlock()
		return
	}
	s.lastReconcile = time.Now()
	s.mu.Unlock()

	if n := s.index.ReconcileArea(center, radius+reconcileRadiusPadding); n > 0 {
		if s.metrics != nil {
			s.metrics.ReconcileEvictions.Add(float64(n))
		}
		s.log.Warn("index reconciliation evicted entries", "count", n)
	}
}

// Close stops the workers and waits for in-flight jobs. Safe to call
// once; further Tick calls become no-ops.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.jobs)
	s.mu.Unlock()
	s.wg.Wait()
}
