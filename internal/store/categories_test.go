package store

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestNewCategoryStore(t *testing.T) {
	s := NewCategoryStore("", logging.NewMockLogger())
	assert.Equal(t, DefaultCategoriesFile, s.CategoriesFile)

	s = NewCategoryStore("custom.yaml", nil)
	assert.Equal(t, "custom.yaml", s.CategoriesFile)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "test.yaml")
	writeFile(t, testFile, "skip_categories: []\n")

	s := NewCategoryStore("", logging.NewMockLogger())

	file, err := s.FindConfigFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testFile, file)

	_, err = s.FindConfigFile(filepath.Join(dir, "nonexistent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigFile_ConfigSubdirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0750))
	writeFile(t, filepath.Join(dir, "config", "categories.yaml"), "skip_categories: []\n")
	chdir(t, dir)

	s := NewCategoryStore("categories.yaml", logging.NewMockLogger())
	file, err := s.FindConfigFile("categories.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("config", "categories.yaml"), file)
}

func TestLoadCategoryTables_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "categories.yaml")
	writeFile(t, file, `
skip_categories:
  - Revolut
  - "LV89PARX0002056954007"
income_categories:
  salary: ["darba alga"]
  other_income: []
expense_categories:
  transport: ["bolt", "CityBee"]
  food: ["rimi", "maxima"]
  gifts:
`)

	s := NewCategoryStore(file, logging.NewMockLogger())
	tables, err := s.LoadCategoryTables()
	require.NoError(t, err)

	assert.Equal(t, []string{"revolut", "lv89parx0002056954007"}, tables.Skip)
	assert.Equal(t, []string{"salary", "other_income"}, models.Names(tables.Income))
	assert.Equal(t, []string{"transport", "food", "gifts"}, models.Names(tables.Expense))
	assert.Equal(t, []string{"bolt", "citybee"}, tables.Expense[0].Keywords)
	assert.Empty(t, tables.Expense[2].Keywords)
}

func TestLoadCategoryTables_MissingFileUsesDefaults(t *testing.T) {
	logger := logging.NewMockLogger()
	s := NewCategoryStore(filepath.Join(t.TempDir(), "absent.yaml"), logger)

	tables, err := s.LoadCategoryTables()
	require.NoError(t, err)
	assert.Equal(t, DefaultCategoryTables(), tables)
	assert.True(t, logger.HasEntry("WARN", "Categories file not found, using built-in tables"))
}

func TestParseCategoryTables_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError string
	}{
		{name: "not a mapping", content: "- food\n- rent\n", expectError: "expected a mapping"},
		{name: "unknown section", content: "investment_categories:\n  roundups: [pigr]\n", expectError: "unknown section"},
		{name: "table is a list", content: "expense_categories:\n  - food\n", expectError: "expected a mapping of category"},
		{name: "keywords not a list", content: "expense_categories:\n  food: rimi\n", expectError: "expected a list of keywords"},
		{name: "duplicate category", content: "income_categories:\n  salary: []\n  Salary: []\n", expectError: "duplicate category"},
		{name: "invalid yaml", content: "skip_categories: [revolut\n", expectError: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCategoryTables([]byte(tt.content))
			require.Error(t, err)
			if tt.expectError != "" {
				assert.Contains(t, err.Error(), tt.expectError)
			}
		})
	}
}

func TestParseCategoryTables_EmptyDocument(t *testing.T) {
	tables, err := ParseCategoryTables([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, tables.Skip)
	assert.Empty(t, tables.Income)
	assert.Empty(t, tables.Expense)
}

func TestParseCategoryTables_DropsBlankKeywords(t *testing.T) {
	tables, err := ParseCategoryTables([]byte("skip_categories: [\"\", \"  \", revolut]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"revolut"}, tables.Skip)
}

func TestDefaultCategoryTables(t *testing.T) {
	tables := DefaultCategoryTables()
	assert.Contains(t, tables.Skip, "revolut")
	assert.Equal(t, "salary", tables.Income[0].Name)
	assert.Equal(t, "food", tables.Expense[0].Name)
	assert.Contains(t, models.Names(tables.Expense), "roundups")
}

func TestMockCategoryStore(t *testing.T) {
	m := &MockCategoryStore{Tables: DefaultCategoryTables()}
	tables, err := m.LoadCategoryTables()
	require.NoError(t, err)
	assert.Equal(t, DefaultCategoryTables(), tables)

	m.LoadCategoriesError = os.ErrPermission
	_, err = m.LoadCategoryTables()
	assert.ErrorIs(t, err, os.ErrPermission)
}
