package categorizer

import "fjacquet/ledger-import/internal/models"

// CategoryStoreInterface defines the interface for category data storage.
type CategoryStoreInterface interface {
	LoadCategoryTables() (models.CategoryTables, error)
}
