package server

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/user/rsakit/internal/benchmark"
	"github.com/user/rsakit/internal/storage"
)

const (
	StatusQueued     = "queued"
	StatusRunning    = "running"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusTerminated = "terminated"
)

type WorkerPool struct {
	workers    int
	jobQueue   chan *BenchmarkJob
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	jobStore   *JobStore
	keyStore   *storage.KeyStore
	activeJobs map[string]context.CancelFunc
	mu         sync.Mutex
	startOnce  sync.Once
	stopOnce   sync.Once
}

func NewWorkerPool(numWorkers int, jobStore *JobStore, keyStore *storage.KeyStore) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers:    numWorkers,
		jobQueue:   make(chan *BenchmarkJob, numWorkers*2),
		ctx:        ctx,
		cancel:     cancel,
		jobStore:   jobStore,
		keyStore:   keyStore,
		activeJobs: make(map[string]context.CancelFunc),
	}
}

func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		log.Printf("Starting worker pool with %d workers", wp.workers)
		for i := 0; i < wp.workers; i++ {
			wp.wg.Add(1)
			go wp.worker(i)
		}
	})
}

// Stop cancels running jobs and waits for the workers to exit. Queued jobs
// are left in the queued state.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		log.Println("Stopping worker pool...")
		wp.cancel()
		wp.wg.Wait()
		log.Println("Worker pool stopped")
	})
}

func (wp *WorkerPool) Submit(job *BenchmarkJob) error {
	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	default:
	}

	select {
	case wp.jobQueue <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full")
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case job := <-wp.jobQueue:
			log.Printf("Worker %d processing job %s", id, job.ID)
			wp.processJob(job)

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) TerminateJob(jobID string) {
	wp.mu.Lock()
	if cancel, exists := wp.activeJobs[jobID]; exists {
		cancel()
		delete(wp.activeJobs, jobID)
	}
	wp.mu.Unlock()
}

func (wp *WorkerPool) processJob(job *BenchmarkJob) {
	defer close(job.Progress)

	jobCtx, jobCancel := context.WithCancel(wp.ctx)

	wp.mu.Lock()
	wp.activeJobs[job.ID] = jobCancel
	wp.mu.Unlock()

	defer func() {
		wp.mu.Lock()
		delete(wp.activeJobs, job.ID)
		wp.mu.Unlock()
		jobCancel()
	}()

	// Terminated while still queued
	if !wp.jobStore.UpdateStatus(job.ID, StatusRunning) {
		return
	}

	runner := benchmark.NewWebRunner(job.Config, wp.keyStore)
	runner.SetProgressChannel(job.Progress)

	results, err := runner.RunWithProgress(jobCtx)
	if err != nil {
		log.Printf("Job %s failed: %v", job.ID, err)
	} else {
		log.Printf("Job %s completed with %d results", job.ID, len(results))
	}
	wp.jobStore.CompleteJob(job.ID, results, err)
}

type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*BenchmarkJob
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*BenchmarkJob)}
}

func (js *JobStore) Add(job *BenchmarkJob) {
	js.mu.Lock()
	defer js.mu.Unlock()
	js.jobs[job.ID] = job
}

func (js *JobStore) Remove(jobID string) {
	js.mu.Lock()
	defer js.mu.Unlock()
	delete(js.jobs, jobID)
}

// Get returns a copy of the job safe to read without holding the lock.
func (js *JobStore) Get(jobID string) (BenchmarkJob, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return BenchmarkJob{}, false
	}
	return *job, true
}

// progress returns the job's progress channel; it has a single reader.
func (js *JobStore) progress(jobID string) (<-chan benchmark.ProgressUpdate, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return nil, false
	}
	return job.Progress, true
}

func (js *JobStore) List() []BenchmarkJob {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make([]BenchmarkJob, 0, len(js.jobs))
	for _, job := range js.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// UpdateStatus moves a job to status unless it has already been terminated.
func (js *JobStore) UpdateStatus(jobID, status string) bool {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, exists := js.jobs[jobID]
	if !exists || job.Status == StatusTerminated {
		return false
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	return true
}

// Terminate marks a queued or running job as terminated.
func (js *JobStore) Terminate(jobID string) (found bool, changed bool) {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return false, false
	}
	if job.Status != StatusQueued && job.Status != StatusRunning {
		return true, false
	}
	job.Status = StatusTerminated
	job.UpdatedAt = time.Now()
	return true, true
}

func (js *JobStore) CompleteJob(jobID string, results []benchmark.WebResult, err error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return
	}

	completedAt := time.Now()
	job.CompletedAt = &completedAt
	job.UpdatedAt = completedAt
	job.Results = results

	switch {
	case job.Status == StatusTerminated:
	case err != nil:
		job.Status = StatusFailed
		job.Error = err.Error()
	default:
		job.Status = StatusCompleted
	}
}
