// Package container provides dependency injection for the ledger-import application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/ledger-import/internal/api"
	"fjacquet/ledger-import/internal/categorizer"
	"fjacquet/ledger-import/internal/config"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/pipeline"
	"fjacquet/ledger-import/internal/prompt"
	"fjacquet/ledger-import/internal/report"
	"fjacquet/ledger-import/internal/statementparser"
	"fjacquet/ledger-import/internal/store"
	"fjacquet/ledger-import/internal/watcher"

	"gorm.io/gorm"
)

// Container holds all application dependencies and provides methods to access them.
// The database is opened on first use so commands that never touch it
// (classify) work without a server.
type Container struct {
	logger        logging.Logger
	config        *config.Config
	categoryStore *store.CategoryStore
	categorizer   *categorizer.Categorizer
	parser        *statementparser.Parser
	reports       *report.ReportGenerator

	db           *gorm.DB
	transactions *store.TransactionStore
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	categoryStore := store.NewCategoryStore(cfg.Categories.File, logger)
	cat, err := categorizer.NewCategorizerFromStore(categoryStore, logger)
	if err != nil {
		return nil, err
	}

	var delimiter rune
	if r := []rune(cfg.Statement.Delimiter); len(r) > 0 {
		delimiter = r[0]
	}
	parser := statementparser.NewParser(statementparser.Options{
		HeaderRows: cfg.Statement.HeaderRows,
		FooterRows: cfg.Statement.FooterRows,
		Delimiter:  delimiter,
		Encoding:   cfg.Statement.Encoding,
	}, logger)

	logger.Debug("Container initialized",
		logging.Field{Key: "categories_file", Value: cfg.Categories.File},
		logging.Field{Key: logging.FieldDriver, Value: cfg.Database.Driver})

	return &Container{
		logger:        logger,
		config:        cfg,
		categoryStore: categoryStore,
		categorizer:   cat,
		parser:        parser,
		reports:       report.NewReportGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetCategoryStore returns the store the keyword tables were loaded from.
func (c *Container) GetCategoryStore() *store.CategoryStore {
	return c.categoryStore
}

// GetParser returns the statement parser.
func (c *Container) GetParser() *statementparser.Parser {
	return c.parser
}

// GetReportGenerator returns the summary renderer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// TransactionStore connects to the database and prepares the schema on first call.
func (c *Container) TransactionStore(ctx context.Context) (*store.TransactionStore, error) {
	if c.transactions != nil {
		return c.transactions, nil
	}

	db, err := store.Open(c.config.Database, c.logger)
	if err != nil {
		return nil, err
	}
	ts := store.NewTransactionStore(db, c.logger)
	if err := ts.EnsureSchema(ctx); err != nil {
		_ = store.Close(db)
		return nil, err
	}

	c.db = db
	c.transactions = ts
	return ts, nil
}

// NewPrompter returns a prompter over the given terminal streams.
func (c *Container) NewPrompter(in io.Reader, out io.Writer) *prompt.Prompter {
	return prompt.NewPrompter(in, out, c.logger)
}

// NewPipeline wires an import pipeline asking resolver about unknown rows.
func (c *Container) NewPipeline(ctx context.Context, resolver pipeline.Resolver, opts pipeline.Options) (*pipeline.Pipeline, error) {
	ts, err := c.TransactionStore(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.New(c.parser, c.categorizer, resolver, ts, c.logger, opts), nil
}

// NewAPIServer returns the report server over the transaction store.
func (c *Container) NewAPIServer(ctx context.Context) (*api.Server, error) {
	ts, err := c.TransactionStore(ctx)
	if err != nil {
		return nil, err
	}
	return api.NewServer(ts, c.logger, c.config.API.AllowedOrigins), nil
}

// NewWatcher returns a watcher over the data directory calling handler for
// each settled statement.
func (c *Container) NewWatcher(handler watcher.Handler) (*watcher.Watcher, error) {
	return watcher.New(
		c.config.Data.Directory,
		c.config.Data.Pattern,
		time.Duration(c.config.Watch.DebounceMillis)*time.Millisecond,
		handler,
		c.logger,
	)
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}
	err := store.Close(c.db)
	c.db = nil
	c.transactions = nil
	return err
}
