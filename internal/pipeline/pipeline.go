// Package pipeline drives the import of statement files into the store.
//
// Each file is read, classified, fingerprinted and resolved with the operator
// before its eligible rows are written in a single database transaction.
// Files are processed one after the other.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fjacquet/ledger-import/internal/categorizer"
	"fjacquet/ledger-import/internal/fingerprint"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"

	"github.com/google/uuid"
)

// Extractor turns a statement file into candidates.
type Extractor interface {
	Parse(filePath string) ([]models.Candidate, error)
}

// Classifier assigns categories from the keyword tables.
type Classifier interface {
	Classify(narrative string, amount int64) categorizer.Result
	ValidCategories(amount int64) []string
}

// Resolver asks for the category of a row the classifier could not place.
// An empty answer skips the row.
type Resolver interface {
	Resolve(ctx context.Context, c models.Candidate, valid []string) (string, error)
}

// Store is the persistence the pipeline needs.
type Store interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	InsertBatch(ctx context.Context, rows []models.StoredTransaction) (store.BatchResult, error)
	Summarize(ctx context.Context) ([]models.SummaryRow, error)
}

// Options tune a run.
type Options struct {
	// KeepGoing continues with the next file when one fails.
	KeepGoing bool
}

// FileResult counts what happened to the rows of one file.
type FileResult struct {
	File          string
	Rows          int
	Classified    int // placed by the keyword tables, skip list included
	Prompted      int
	AlreadyStored int // unclassified rows found in the store, not prompted
	Skipped       int // skip list matches and empty answers
	ZeroAmount    int // rows without a transaction type
	Eligible      int
	Inserted      int
	Duplicates    int
}

// FileError records a file that could not be imported.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// RunResult is the outcome of Run.
type RunResult struct {
	RunID   string
	Files   []FileResult
	Failed  []FileError
	Summary []models.SummaryRow
}

// Inserted returns the number of rows written over all files.
func (r RunResult) Inserted() int {
	n := 0
	for _, f := range r.Files {
		n += f.Inserted
	}
	return n
}

// Pipeline wires the import stages together.
type Pipeline struct {
	extractor  Extractor
	classifier Classifier
	resolver   Resolver
	store      Store
	logger     logging.Logger
	opts       Options
}

// New creates a pipeline.
func New(extractor Extractor, classifier Classifier, resolver Resolver, st Store, logger logging.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		resolver:   resolver,
		store:      st,
		logger:     logger,
		opts:       opts,
	}
}

// Run imports the files in order and returns the grouped totals of the store.
// Without KeepGoing the first failing file stops the run; files committed
// before it stay in the store.
func (p *Pipeline) Run(ctx context.Context, files []string) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString()}
	logger := p.logger.WithField(logging.FieldRunID, result.RunID)
	logger.Info(fmt.Sprintf("Found %d CSV files", len(files)), logging.Field{Key: logging.FieldCount, Value: len(files)})

	start := time.Now()
	for _, file := range files {
		fr, err := p.processFile(ctx, file, logger)
		if err != nil {
			if !p.opts.KeepGoing || ctx.Err() != nil {
				return result, fmt.Errorf("import of %s failed: %w", file, err)
			}
			logger.WithError(err).Error("File import failed, continuing",
				logging.Field{Key: logging.FieldFile, Value: file})
			result.Failed = append(result.Failed, FileError{File: file, Err: err})
			continue
		}
		result.Files = append(result.Files, fr)
	}

	summary, err := p.store.Summarize(ctx)
	if err != nil {
		return result, err
	}
	result.Summary = summary

	logger.Info("Import finished",
		logging.Field{Key: logging.FieldCount, Value: result.Inserted()},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return result, nil
}

// ProcessFile imports a single statement file.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	return p.processFile(ctx, path, p.logger)
}

func (p *Pipeline) processFile(ctx context.Context, path string, logger logging.Logger) (FileResult, error) {
	logger = logger.WithField(logging.FieldFile, filepath.Base(path))
	logger.Info("Processing file: " + filepath.Base(path))
	result := FileResult{File: path}

	// 1. Extract, classify and fingerprint
	candidates, err := p.extractor.Parse(path)
	if err != nil {
		return result, err
	}
	result.Rows = len(candidates)
	for i := range candidates {
		c := &candidates[i]
		if r := p.classifier.Classify(c.Narrative, c.Amount); r.Found {
			c.SetCategory(r.Category)
			result.Classified++
		}
		c.Fingerprint = fingerprint.ForCandidate(*c)
	}

	// 2. Resolve unknown rows, unless a previous run already stored them.
	// Rows without a type are never stored, so nobody is asked about them.
	for i := range candidates {
		c := &candidates[i]
		if c.Categorized || !c.Type.IsValid() {
			continue
		}
		stored, err := p.store.Exists(ctx, c.Fingerprint)
		if err != nil {
			return result, err
		}
		if stored {
			c.AlreadyStored = true
			result.AlreadyStored++
			continue
		}
		answer, err := p.resolver.Resolve(ctx, *c, p.classifier.ValidCategories(c.Amount))
		if err != nil {
			return result, err
		}
		c.SetCategory(answer)
		result.Prompted++
	}

	// 3. Recompute type and fingerprint after resolution
	for i := range candidates {
		c := &candidates[i]
		c.Type = models.DetermineType(c.Amount)
		c.Fingerprint = fingerprint.ForCandidate(*c)
	}

	// 4. Keep categorized rows with a type, drop skips
	rows := make([]models.StoredTransaction, 0, len(candidates))
	for _, c := range candidates {
		if !c.Type.IsValid() {
			result.ZeroAmount++
			logger.Debug("Row without transaction type dropped",
				logging.Field{Key: logging.FieldLine, Value: c.Line})
			continue
		}
		if !c.Categorized {
			continue
		}
		result.Eligible++
		if c.IsSkipped() {
			result.Skipped++
			continue
		}
		rows = append(rows, c.ToStored())
	}
	logger.Info(fmt.Sprintf("Transactions ready for insertion: %d", result.Eligible),
		logging.Field{Key: logging.FieldCount, Value: result.Eligible})

	// 5. Write everything in one transaction
	batch, err := p.store.InsertBatch(ctx, rows)
	if err != nil {
		return result, err
	}
	result.Inserted = batch.Inserted
	result.Duplicates = batch.Duplicates

	logger.Info("File imported",
		logging.Field{Key: "inserted", Value: result.Inserted},
		logging.Field{Key: "duplicates", Value: result.Duplicates},
		logging.Field{Key: "skipped", Value: result.Skipped},
		logging.Field{Key: "zero_amount", Value: result.ZeroAmount})
	return result, nil
}
