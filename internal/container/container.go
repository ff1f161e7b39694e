// Package container wires the finance analyzer's dependencies from
// configuration. Commands build one Container and close it on exit.
package container

import (
	"context"
	"fmt"
	"time"

	"fjacquet/finance-analyzer/internal/api"
	"fjacquet/finance-analyzer/internal/budget"
	"fjacquet/finance-analyzer/internal/categorizer"
	"fjacquet/finance-analyzer/internal/chat"
	"fjacquet/finance-analyzer/internal/common"
	"fjacquet/finance-analyzer/internal/config"
	"fjacquet/finance-analyzer/internal/database"
	"fjacquet/finance-analyzer/internal/factory"
	"fjacquet/finance-analyzer/internal/filestore"
	"fjacquet/finance-analyzer/internal/insight"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/store"
	"fjacquet/finance-analyzer/internal/upload"
)

// Container holds the wired application. Fields are private so nothing is
// swapped after construction.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	db         *database.DB
	registry   *factory.Registry
	files      *filestore.Store
	categories *store.CategoryStore
	gemini     *categorizer.GeminiClient

	uploads  *upload.Service
	budgets  *budget.Service
	insights *insight.Service
	chat     *chat.Service
	server   *api.Server
}

// NewContainer opens the database, seeds the default categories and builds
// every service. The caller must Close the container.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	common.SetDelimiter(cfg.Delimiter())

	c := &Container{
		logger:     logger,
		config:     cfg,
		registry:   factory.DefaultRegistry(logger),
		categories: store.NewCategoryStore(cfg.Categories.File, logger),
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	c.db = db

	if err := c.initDatabase(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	files, err := filestore.New(cfg.Upload.Dir)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	c.files = files

	if cfg.AI.Enabled {
		gemini, err := categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AITimeout(), logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.gemini = gemini
		logger.Info("AI features enabled", logging.F(logging.FieldModel, cfg.AI.Model))
	} else {
		logger.Info("AI features disabled")
	}

	if err := c.buildServices(); err != nil {
		_ = c.Close()
		return nil, err
	}

	logger.Info("Container initialized",
		logging.F(logging.FieldDatabase, cfg.Database.Path),
		logging.F("banks", c.registry.SupportedBanks()),
		logging.F("ai_enabled", c.gemini != nil))
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	if err := c.db.Init(); err != nil {
		return err
	}
	configs, err := c.categories.LoadCategories()
	if err != nil {
		return err
	}
	added, err := c.db.SeedCategories(ctx, configs)
	if err != nil {
		return err
	}
	if added > 0 {
		c.logger.Info("Seeded categories", logging.F(logging.FieldCount, added))
	}
	return nil
}

func (c *Container) buildServices() error {
	c.uploads = upload.NewService(upload.NewJobStore(), c.registry, c.files, c.db, c.logger)

	configs, err := c.categories.LoadCategories()
	if err != nil {
		return err
	}
	// Interface values stay nil when AI is off so the services report it.
	var (
		ai        categorizer.AIClient
		analyzer  insight.Analyzer
		assistant chat.Assistant
	)
	if c.gemini != nil {
		ai, analyzer, assistant = c.gemini, c.gemini, c.gemini
	}
	batch := c.config.AI.BatchSize
	if batch <= 0 {
		batch = categorizer.DefaultBatchSize
	}
	c.uploads.WithCategorizer(categorizer.New(configs, ai, batch, c.logger), c.db)

	c.budgets = budget.NewService(c.db, c.logger)
	c.insights = insight.NewService(c.db, analyzer, c.logger)
	c.chat = chat.NewService(c.db, assistant, c.logger)

	c.server = api.NewServer(api.Deps{
		Uploads:  c.uploads,
		Files:    c.files,
		Banks:    c.registry,
		Store:    c.db,
		Budgets:  c.budgets,
		Insights: c.insights,
		Chat:     c.chat,
	}, api.Options{
		MaxUploadSize: c.config.Upload.MaxSize,
		CORSOrigin:    c.config.Server.CORSOrigin,
	}, c.logger)
	return nil
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetDB returns the database.
func (c *Container) GetDB() *database.DB { return c.db }

// GetRegistry returns the bank parser registry.
func (c *Container) GetRegistry() *factory.Registry { return c.registry }

// GetUploads returns the upload job service.
func (c *Container) GetUploads() *upload.Service { return c.uploads }

// GetInsights returns the insight service.
func (c *Container) GetInsights() *insight.Service { return c.insights }

// AIEnabled reports whether a Gemini client was created.
func (c *Container) AIEnabled() bool { return c.gemini != nil }

// GetServer returns the HTTP API.
func (c *Container) GetServer() *api.Server { return c.server }

// Maintain drops upload jobs older than the configured TTL and expired
// insights. It is meant to run periodically.
func (c *Container) Maintain(ctx context.Context) {
	if c.uploads != nil {
		if n := c.uploads.Jobs().Sweep(c.config.JobTTL()); n > 0 {
			c.logger.Info("Swept upload jobs", logging.F(logging.FieldCount, n))
		}
	}
	if c.insights != nil {
		n, err := c.insights.CleanupExpired(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to remove expired insights")
		} else if n > 0 {
			c.logger.Info("Removed expired insights", logging.F(logging.FieldCount, n))
		}
	}
}

// Close waits for running upload jobs, then releases the AI client and the
// database.
func (c *Container) Close() error {
	start := time.Now()
	if c.uploads != nil {
		c.uploads.Wait()
	}
	var firstErr error
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			firstErr = err
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.logger.Info("Container closed", logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return firstErr
}
