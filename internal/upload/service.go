// Package upload runs statement imports as background jobs. A job parses and
// categorizes an uploaded file, then waits in memory until the user confirms
// it and its transactions are written to the database.
package upload

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fjacquet/finance-analyzer/internal/factory"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/google/uuid"
)

// Parser detects the bank format of a statement and parses it.
type Parser interface {
	Parse(content string) (*factory.Result, error)
}

// Categorizer suggests categories for staged transactions, indexed by position.
type Categorizer interface {
	Categorize(ctx context.Context, txs []models.StagedTransaction, categories []models.Category) ([]models.CategorySuggestion, error)
}

// CategoryLister provides the categories suggestions are matched against.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// TransactionWriter persists confirmed transactions atomically.
type TransactionWriter interface {
	BulkCreateTransactions(ctx context.Context, txs []models.Transaction) (int, error)
}

// FileStore holds uploaded files until they are processed.
type FileStore interface {
	Read(name string) ([]byte, error)
	Delete(name string) error
}

// Service orchestrates upload jobs.
type Service struct {
	jobs        *JobStore
	parser      Parser
	files       FileStore
	writer      TransactionWriter
	categorizer Categorizer
	categories  CategoryLister
	logger      logging.Logger
	wg          sync.WaitGroup
}

// NewService creates a Service without categorization.
func NewService(jobs *JobStore, parser Parser, files FileStore, writer TransactionWriter, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{jobs: jobs, parser: parser, files: files, writer: writer, logger: logger}
}

// WithCategorizer enables categorization of parsed transactions.
func (s *Service) WithCategorizer(c Categorizer, categories CategoryLister) *Service {
	s.categorizer = c
	return s.WithCategories(categories)
}

// WithCategories sets the categories suggestions and corrections are checked
// against.
func (s *Service) WithCategories(categories CategoryLister) *Service {
	s.categories = categories
	return s
}

// Jobs exposes the job store, for sweeping.
func (s *Service) Jobs() *JobStore {
	return s.jobs
}

// ProcessCSV registers a pending job for a stored upload and processes it in
// the background. It returns the job ID immediately.
func (s *Service) ProcessCSV(ctx context.Context, filename, storedName string) (string, error) {
	if storedName == "" {
		return "", fmt.Errorf("stored file name is required")
	}
	job := &models.UploadJob{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    models.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	s.jobs.Create(job)
	s.logger.Info("Upload job created",
		logging.F(logging.FieldJobID, job.ID),
		logging.F(logging.FieldFile, filename))

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.process(bg, job.ID, storedName)
	}()
	return job.ID, nil
}

// Wait blocks until all background processing has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) process(ctx context.Context, jobID, storedName string) {
	log := s.logger.WithField(logging.FieldJobID, jobID)
	start := time.Now()

	defer func() {
		if err := s.files.Delete(storedName); err != nil {
			log.WithError(err).Warn("Failed to delete uploaded file",
				logging.F(logging.FieldStoredFile, storedName))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Upload processing panicked", logging.F(logging.FieldReason, fmt.Sprint(r)))
			s.fail(jobID, fmt.Errorf("internal error while processing upload"))
		}
	}()

	s.jobs.Update(jobID, func(j *models.UploadJob) { j.Status = models.JobProcessing })

	data, err := s.files.Read(storedName)
	if err != nil {
		log.WithError(err).Error("Failed to read uploaded file")
		s.fail(jobID, err)
		return
	}

	result, err := s.parser.Parse(string(data))
	if err != nil {
		log.WithError(err).Warn("Failed to parse upload")
		s.fail(jobID, err)
		return
	}

	staged := make([]models.StagedTransaction, len(result.Transactions))
	for i, tx := range result.Transactions {
		staged[i] = models.StagedTransaction{ParsedTransaction: tx}
	}
	s.jobs.Update(jobID, func(j *models.UploadJob) {
		j.BankFormat = result.Bank
		j.TotalTransactions = len(staged)
		j.ProcessedTransactions = len(staged)
	})

	s.categorize(ctx, log, staged)

	now := time.Now().UTC()
	s.jobs.Update(jobID, func(j *models.UploadJob) {
		j.Transactions = staged
		j.Status = models.JobCompleted
		j.CompletedAt = &now
	})
	log.Info("Upload job completed",
		logging.F(logging.FieldBank, result.Bank),
		logging.F(logging.FieldCount, len(staged)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
}

// categorize applies suggestions to staged in place. Failures are logged and
// leave the affected transactions uncategorized.
func (s *Service) categorize(ctx context.Context, log logging.Logger, staged []models.StagedTransaction) {
	if s.categorizer == nil || len(staged) == 0 {
		return
	}
	var categories []models.Category
	if s.categories != nil {
		var err error
		categories, err = s.categories.ListCategories(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to load categories, skipping categorization")
			return
		}
	}

	suggestions, err := s.categorizer.Categorize(ctx, staged, categories)
	if err != nil {
		log.WithError(err).Error("Categorization failed",
			logging.F("suggestions", len(suggestions)))
	}
	applySuggestions(staged, suggestions, categories)
}

func applySuggestions(staged []models.StagedTransaction, suggestions []models.CategorySuggestion, categories []models.Category) {
	for _, sug := range suggestions {
		if sug.TransactionID < 0 || sug.TransactionID >= len(staged) {
			continue
		}
		tx := &staged[sug.TransactionID]
		tx.SuggestedCategory = sug.SuggestedCategory
		tx.Reasoning = sug.Reasoning
		confidence := sug.Confidence
		tx.ConfidenceScore = &confidence
		for _, c := range categories {
			if strings.EqualFold(c.Name, sug.SuggestedCategory) {
				id := c.ID
				tx.CategoryID = &id
				break
			}
		}
	}
}

// checkCorrections rejects in-range corrections naming a missing category.
func (s *Service) checkCorrections(ctx context.Context, staged int, corrections []models.CategoryCorrection) error {
	if s.categories == nil || len(corrections) == 0 {
		return nil
	}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	known := make(map[int64]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}
	for _, c := range corrections {
		if c.TransactionID < 0 || c.TransactionID >= staged {
			continue
		}
		if !known[c.CategoryID] {
			return fmt.Errorf("%w: %d", ErrUnknownCategory, c.CategoryID)
		}
	}
	return nil
}

func (s *Service) fail(jobID string, err error) {
	now := time.Now().UTC()
	s.jobs.Update(jobID, func(j *models.UploadJob) {
		j.Status = models.JobFailed
		j.ErrorMessage = err.Error()
		j.CompletedAt = &now
	})
}

// GetJobStatus returns a snapshot of the job.
func (s *Service) GetJobStatus(id string) (*models.UploadJob, error) {
	job, ok := s.jobs.Get(id)
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ConfirmUpload applies corrections and saves the staged transactions of a
// completed job, then forgets the job. Corrections address staged
// transactions by index; out-of-range indexes are ignored. A job with nothing
// staged confirms with a zero count.
//
// The job is claimed before writing, so concurrent or repeated confirms get
// ErrJobNotFound. If validation or the write fails the job is restored
// unchanged.
func (s *Service) ConfirmUpload(ctx context.Context, id string, corrections []models.CategoryCorrection) (*models.ConfirmResult, error) {
	job, err := s.jobs.Claim(id)
	if err != nil {
		return nil, err
	}
	if len(job.Transactions) == 0 {
		s.logger.Info("Upload confirmed with no transactions", logging.F(logging.FieldJobID, id))
		return &models.ConfirmResult{Success: true, SavedCount: 0}, nil
	}
	if err := s.checkCorrections(ctx, len(job.Transactions), corrections); err != nil {
		s.jobs.Restore(job)
		return nil, err
	}

	working := job.Clone()
	for _, c := range corrections {
		if c.TransactionID < 0 || c.TransactionID >= len(working.Transactions) {
			continue
		}
		categoryID := c.CategoryID
		working.Transactions[c.TransactionID].CategoryID = &categoryID
		working.Transactions[c.TransactionID].ManuallyCategorized = true
	}

	txs := make([]models.Transaction, 0, len(working.Transactions))
	for _, st := range working.Transactions {
		txs = append(txs, models.NewTransactionFromStaged(st))
	}

	saved, err := s.writer.BulkCreateTransactions(ctx, txs)
	if err != nil {
		s.jobs.Restore(job)
		s.logger.WithError(err).Error("Failed to save confirmed transactions",
			logging.F(logging.FieldJobID, id))
		return nil, fmt.Errorf("save transactions: %w", err)
	}

	s.logger.Info("Upload confirmed",
		logging.F(logging.FieldJobID, id),
		logging.F(logging.FieldCount, saved),
		logging.F("corrections", len(corrections)))
	return &models.ConfirmResult{Success: true, SavedCount: saved}, nil
}
