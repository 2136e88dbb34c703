package utils

import (
	"sync"
	"time"
)

// WorkerPool runs basket-item jobs with bounded concurrency and a minimum
// interval between job starts, so retailer APIs see a polite request rate
// even when several items are scraped in one run.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastStart   time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
		lastStart:   time.Now(),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) enforceRateLimit() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastStart)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastStart = time.Now()
}

// StringSet is a thread-safe set of strings. The fetcher uses it to skip
// queries that were already materialized within the current run.
type StringSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add returns true if the value was newly added, false if already present.
func (s *StringSet) Add(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[v]; exists {
		return false
	}
	s.seen[v] = struct{}{}
	return true
}

// Contains returns true if the value is in the set.
func (s *StringSet) Contains(v string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[v]
	return exists
}

// Size returns the number of values tracked.
func (s *StringSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
