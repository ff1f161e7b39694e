package upload

import (
	"sync"
	"time"

	"fjacquet/finance-analyzer/internal/models"
)

// JobStore keeps upload jobs in process memory. It is safe for concurrent use
// and never hands out its own job values: reads return deep copies.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.UploadJob
	now  func() time.Time
}

// NewJobStore creates an empty store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*models.UploadJob), now: time.Now}
}

// Create adds job, replacing any job with the same ID.
func (s *JobStore) Create(job *models.UploadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
}

// Get returns a copy of the job with id.
func (s *JobStore) Get(id string) (*models.UploadJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// Update applies fn to the stored job under the lock. It reports false when
// the job no longer exists, for example after a sweep.
func (s *JobStore) Update(id string, fn func(*models.UploadJob)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// Claim removes and returns the job when it is completed. A missing job
// returns ErrJobNotFound; a job in any other state stays and returns
// ErrJobNotCompleted. Only one caller can claim a given job.
func (s *JobStore) Claim(id string) (*models.UploadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status != models.JobCompleted {
		return nil, ErrJobNotCompleted
	}
	delete(s.jobs, id)
	return job, nil
}

// Restore puts a claimed job back, unless a job with its ID appeared meanwhile.
func (s *JobStore) Restore(job *models.UploadJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; !exists {
		s.jobs[job.ID] = job
	}
}

// Sweep removes terminal jobs created more than ttl ago and returns how many
// were removed. Jobs still being processed are kept.
func (s *JobStore) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if job.Status.IsTerminal() && job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
