package upload

import (
	"testing"
	"time"

	"fjacquet/finance-analyzer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStore_ClaimAndRestore(t *testing.T) {
	s := NewJobStore()
	s.Create(&models.UploadJob{ID: "a", Status: models.JobProcessing})

	_, err := s.Claim("a")
	assert.ErrorIs(t, err, ErrJobNotCompleted)
	_, err = s.Claim("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	s.Update("a", func(j *models.UploadJob) { j.Status = models.JobCompleted })
	job, err := s.Claim("a")
	require.NoError(t, err)
	assert.Equal(t, "a", job.ID)

	_, err = s.Claim("a")
	assert.ErrorIs(t, err, ErrJobNotFound)

	s.Restore(job)
	_, ok := s.Get("a")
	assert.True(t, ok)
}

func TestJobStore_UpdateMissing(t *testing.T) {
	s := NewJobStore()
	assert.False(t, s.Update("x", func(*models.UploadJob) { t.Fatal("must not run") }))
}

func TestJobStore_Sweep(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewJobStore()
	s.now = func() time.Time { return now }

	s.Create(&models.UploadJob{ID: "old-done", Status: models.JobCompleted, CreatedAt: now.Add(-48 * time.Hour)})
	s.Create(&models.UploadJob{ID: "old-failed", Status: models.JobFailed, CreatedAt: now.Add(-48 * time.Hour)})
	s.Create(&models.UploadJob{ID: "old-running", Status: models.JobProcessing, CreatedAt: now.Add(-48 * time.Hour)})
	s.Create(&models.UploadJob{ID: "fresh", Status: models.JobCompleted, CreatedAt: now.Add(-time.Hour)})

	assert.Equal(t, 2, s.Sweep(24*time.Hour))
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("old-running")
	assert.True(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
}
