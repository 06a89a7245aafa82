package store

import (
	"context"
	"fmt"
	"sort"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchResult counts the outcome of an InsertBatch call.
type BatchResult struct {
	Inserted   int
	Duplicates int
}

// TransactionStore persists imported transactions. Rows are append-only and
// keyed by fingerprint.
type TransactionStore struct {
	db     *gorm.DB
	logger logging.Logger
}

// NewTransactionStore wraps an open database handle.
func NewTransactionStore(db *gorm.DB, logger logging.Logger) *TransactionStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &TransactionStore{db: db, logger: logger}
}

// EnsureSchema creates the transactions table when it does not exist.
func (s *TransactionStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.StoredTransaction{}); err != nil {
		return fmt.Errorf("failed to create transactions table: %w", err)
	}
	return nil
}

// Exists reports whether a row with the fingerprint is stored.
func (s *TransactionStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	return exists(s.db.WithContext(ctx), fingerprint)
}

func exists(db *gorm.DB, fingerprint string) (bool, error) {
	var n int64
	err := db.Model(&models.StoredTransaction{}).
		Where("fingerprint = ?", fingerprint).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up fingerprint %s: %w", fingerprint, err)
	}
	return n > 0, nil
}

// Insert writes one row. A row whose fingerprint is already stored is left
// untouched and reported with inserted == false.
func (s *TransactionStore) Insert(ctx context.Context, row models.StoredTransaction) (bool, error) {
	return s.insert(s.db.WithContext(ctx), row)
}

func (s *TransactionStore) insert(db *gorm.DB, row models.StoredTransaction) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", row.Fingerprint, res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Warn("Duplicate transaction skipped",
			logging.Field{Key: logging.FieldFingerprint, Value: row.Fingerprint})
		return false, nil
	}
	return true, nil
}

// InsertBatch writes the rows of one file in a single database transaction.
// Rows already stored are skipped. Any error rolls the whole batch back.
func (s *TransactionStore) InsertBatch(ctx context.Context, rows []models.StoredTransaction) (BatchResult, error) {
	var result BatchResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result = BatchResult{}
		for _, row := range rows {
			found, err := exists(tx, row.Fingerprint)
			if err != nil {
				return err
			}
			if found {
				s.logger.Debug("Transaction already stored",
					logging.Field{Key: logging.FieldFingerprint, Value: row.Fingerprint})
				result.Duplicates++
				continue
			}

			inserted, err := s.insert(tx, row)
			if err != nil {
				return err
			}
			if inserted {
				result.Inserted++
			} else {
				result.Duplicates++
			}
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}
	return result, nil
}

// Summarize returns total amounts grouped by type and category.
func (s *TransactionStore) Summarize(ctx context.Context) ([]models.SummaryRow, error) {
	var groups []struct {
		Type     string
		Category string
		Total    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.StoredTransaction{}).
		Select("type, category, SUM(amount) AS total").
		Group("type, category").
		Order("type, category").
		Scan(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}

	summary := make([]models.SummaryRow, 0, len(groups))
	for _, g := range groups {
		summary = append(summary, models.SummaryRow{
			Type:       g.Type,
			Category:   g.Category,
			TotalMinor: g.Total,
			Total:      models.MinorToMajor(g.Total),
		})
	}
	return summary, nil
}

// ExpensesByCategory returns expense totals per category inside the period,
// as positive major-unit amounts ordered by category.
func (s *TransactionStore) ExpensesByCategory(ctx context.Context, period models.Period) ([]models.CategoryTotal, error) {
	rows, err := s.rowsOfType(ctx, models.TypeExpense)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int64)
	for _, r := range rows {
		if period.Contains(r.Date) {
			sums[r.Category] += r.Amount
		}
	}

	totals := make([]models.CategoryTotal, 0, len(sums))
	for category, sum := range sums {
		totals = append(totals, models.CategoryTotal{
			Category: category,
			Total:    models.MinorToMajor(-sum),
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals, nil
}

// AvailableMonths lists the months holding at least one expense, oldest first.
func (s *TransactionStore) AvailableMonths(ctx context.Context) ([]models.MonthYear, error) {
	rows, err := s.rowsOfType(ctx, models.TypeExpense)
	if err != nil {
		return nil, err
	}

	seen := make(map[models.MonthYear]bool)
	months := make([]models.MonthYear, 0)
	for _, r := range rows {
		m := models.MonthYear{Year: r.Date.Year(), Month: int(r.Date.Month())}
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Slice(months, func(i, j int) bool { return monthLess(months[i], months[j]) })
	return months, nil
}

// MonthlyTotals sums amounts per type and month, ordered by month then type.
func (s *TransactionStore) MonthlyTotals(ctx context.Context) ([]models.PeriodTotal, error) {
	var rows []models.StoredTransaction
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	type key struct {
		Type string
		models.MonthYear
	}
	sums := make(map[key]int64)
	for _, r := range rows {
		sums[key{r.Type, models.MonthYear{Year: r.Date.Year(), Month: int(r.Date.Month())}}] += r.Amount
	}

	totals := make([]models.PeriodTotal, 0, len(sums))
	for k, sum := range sums {
		totals = append(totals, models.PeriodTotal{
			Type:  k.Type,
			Year:  k.Year,
			Month: k.Month,
			Total: models.MinorToMajor(sum),
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		a := models.MonthYear{Year: totals[i].Year, Month: totals[i].Month}
		b := models.MonthYear{Year: totals[j].Year, Month: totals[j].Month}
		if a != b {
			return monthLess(a, b)
		}
		return totals[i].Type < totals[j].Type
	})
	return totals, nil
}

func (s *TransactionStore) rowsOfType(ctx context.Context, t models.TransactionType) ([]models.StoredTransaction, error) {
	var rows []models.StoredTransaction
	err := s.db.WithContext(ctx).Where("type = ?", string(t)).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s transactions: %w", t, err)
	}
	return rows, nil
}

func monthLess(a, b models.MonthYear) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Month < b.Month
}

// summarizeRows groups rows in memory the way Summarize does in SQL.
func summarizeRows(rows []models.StoredTransaction) []models.SummaryRow {
	type key struct{ Type, Category string }
	sums := make(map[key]int64)
	for _, r := range rows {
		sums[key{r.Type, r.Category}] += r.Amount
	}
	summary := make([]models.SummaryRow, 0, len(sums))
	for k, sum := range sums {
		summary = append(summary, models.SummaryRow{
			Type:       k.Type,
			Category:   k.Category,
			TotalMinor: sum,
			Total:      models.MinorToMajor(sum),
		})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Type != summary[j].Type {
			return summary[i].Type < summary[j].Type
		}
		return summary[i].Category < summary[j].Category
	})
	return summary
}
