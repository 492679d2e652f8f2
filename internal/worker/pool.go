// Package worker provides background processing for track-related jobs.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
	"github.com/ewilliams-labs/setlist/internal/core/ports"
)

const jobTimeout = 30 * time.Second

var _ ports.AnalysisQueue = (*Pool)(nil)

// Pool estimates audio features for tracks the catalog could not describe.
type Pool struct {
	store   ports.FeatureStore
	analyze AnalyzeFunc
	workers int
	jobs    chan ports.AnalysisJob
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(store ports.FeatureStore, workers int, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		store:   store,
		analyze: AnalyzePreviewFunc,
		workers: workers,
		jobs:    make(chan ports.AnalysisJob, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop rejects new jobs, aborts in-flight downloads and waits for the
// workers to exit. Queued jobs are discarded.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cancel()
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking. It reports false when the queue is
// full or the pool is stopped.
func (p *Pool) Submit(job ports.AnalysisJob) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		log.Printf("WARN worker: dropping job for %s", job.TrackID)
		return false
	}
}

func (p *Pool) processJob(job ports.AnalysisJob) {
	if p.ctx.Err() != nil {
		return
	}
	if job.PreviewURL == "" {
		log.Printf("WARN worker: no preview URL for track %s, skipping analysis", job.TrackID)
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, jobTimeout)
	defer cancel()

	energy, err := p.analyze(ctx, job.PreviewURL)
	if err != nil {
		log.Printf("WARN worker: failed to analyze track %s: %v", job.TrackID, err)
		return
	}

	// Only energy can be measured from a preview; the rest stay neutral.
	features := domain.NeutralFeatures()
	features.Energy = energy
	if err := p.store.UpdateTrackFeatures(ctx, job.TrackID, features); err != nil {
		log.Printf("WARN worker: failed to update track %s: %v", job.TrackID, err)
		return
	}
	log.Printf("DEBUG worker: updated track %s with estimated energy %.2f", job.TrackID, energy)
}
