package store

import (
	"context"
	"sync"

	"fjacquet/ledger-import/internal/models"
)

// MockCategoryStore is a mock implementation of CategoryStore for testing.
type MockCategoryStore struct {
	Tables              models.CategoryTables
	LoadCategoriesError error
}

// LoadCategoryTables returns the mock tables.
func (m *MockCategoryStore) LoadCategoryTables() (models.CategoryTables, error) {
	if m.LoadCategoriesError != nil {
		return models.CategoryTables{}, m.LoadCategoriesError
	}
	return m.Tables, nil
}

// MockTransactionStore keeps rows in memory, keyed by fingerprint.
type MockTransactionStore struct {
	mu   sync.Mutex
	Rows map[string]models.StoredTransaction

	ExistsError error
	InsertError error
}

// NewMockTransactionStore returns an empty in-memory store.
func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{Rows: make(map[string]models.StoredTransaction)}
}

// Exists reports whether a row with the fingerprint was inserted.
func (m *MockTransactionStore) Exists(_ context.Context, fingerprint string) (bool, error) {
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Rows[fingerprint]
	return ok, nil
}

// InsertBatch stores rows whose fingerprint is new.
func (m *MockTransactionStore) InsertBatch(_ context.Context, rows []models.StoredTransaction) (BatchResult, error) {
	if m.InsertError != nil {
		return BatchResult{}, m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result BatchResult
	for _, row := range rows {
		if _, ok := m.Rows[row.Fingerprint]; ok {
			result.Duplicates++
			continue
		}
		m.Rows[row.Fingerprint] = row
		result.Inserted++
	}
	return result, nil
}

// Summarize groups the in-memory rows like the SQL report.
func (m *MockTransactionStore) Summarize(_ context.Context) ([]models.SummaryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]models.StoredTransaction, 0, len(m.Rows))
	for _, r := range m.Rows {
		rows = append(rows, r)
	}
	return summarizeRows(rows), nil
}
