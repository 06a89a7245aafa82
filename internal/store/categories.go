// Package store provides persistence for category tables and imported transactions.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"gopkg.in/yaml.v3"
)

// Top-level keys of the categories file.
const (
	keySkip    = "skip_categories"
	keyIncome  = "income_categories"
	keyExpense = "expense_categories"
)

// DefaultCategoriesFile is used when no file name is configured.
const DefaultCategoriesFile = "categories.yaml"

// CategoryStore loads the keyword tables from a YAML file.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store reading the given categories file.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	if categoriesFile == "" {
		categoriesFile = DefaultCategoriesFile
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &CategoryStore{CategoriesFile: categoriesFile, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "ledger-import", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadCategoryTables reads the keyword tables. A missing file yields the
// built-in defaults; a malformed one is an error.
func (s *CategoryStore) LoadCategoryTables() (models.CategoryTables, error) {
	path, err := s.FindConfigFile(s.CategoriesFile)
	if err != nil {
		s.logger.Warn("Categories file not found, using built-in tables",
			logging.Field{Key: logging.FieldFile, Value: s.CategoriesFile})
		return DefaultCategoryTables(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return models.CategoryTables{}, fmt.Errorf("error reading categories file: %w", err)
	}

	tables, err := ParseCategoryTables(data)
	if err != nil {
		return models.CategoryTables{}, fmt.Errorf("error parsing categories file %s: %w", path, err)
	}

	s.logger.Debug("Loaded category tables",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: "skip_keywords", Value: len(tables.Skip)},
		logging.Field{Key: "income_categories", Value: len(tables.Income)},
		logging.Field{Key: "expense_categories", Value: len(tables.Expense)})
	return tables, nil
}

// ParseCategoryTables decodes the YAML document, keeping the order of the
// income and expense mappings. Keywords are lower-cased.
func ParseCategoryTables(data []byte) (models.CategoryTables, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.CategoryTables{}, err
	}

	var tables models.CategoryTables
	if len(doc.Content) == 0 {
		return tables, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return tables, fmt.Errorf("line %d: expected a mapping at the top level", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case keySkip:
			tables.Skip, err = decodeKeywords(value)
		case keyIncome:
			tables.Income, err = decodeRules(value)
		case keyExpense:
			tables.Expense, err = decodeRules(value)
		default:
			return tables, fmt.Errorf("line %d: unknown section %q", key.Line, key.Value)
		}
		if err != nil {
			return tables, fmt.Errorf("%s: %w", key.Value, err)
		}
	}
	return tables, nil
}

func decodeRules(node *yaml.Node) ([]models.CategoryRule, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of category to keywords", node.Line)
	}

	rules := make([]models.CategoryRule, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.ToLower(strings.TrimSpace(node.Content[i].Value))
		if name == "" {
			return nil, fmt.Errorf("line %d: empty category name", node.Content[i].Line)
		}
		if seen[name] {
			return nil, fmt.Errorf("line %d: duplicate category %q", node.Content[i].Line, name)
		}
		seen[name] = true

		keywords, err := decodeKeywords(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rules = append(rules, models.CategoryRule{Name: name, Keywords: keywords})
	}
	return rules, nil
}

func decodeKeywords(node *yaml.Node) ([]string, error) {
	if isNull(node) {
		return nil, nil
	}
	var raw []string
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("line %d: expected a list of keywords: %w", node.Line, err)
	}
	return normalizeKeywords(raw), nil
}

func normalizeKeywords(raw []string) []string {
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(k)
		if strings.TrimSpace(k) == "" {
			continue
		}
		keywords = append(keywords, k)
	}
	return keywords
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// DefaultCategoryTables returns the tables shipped with the importer.
func DefaultCategoryTables() models.CategoryTables {
	return models.CategoryTables{
		Skip: []string{"revolut", "revolt", "lv89parx0002056954007", "lv55parx0027855350002"},
		Income: []models.CategoryRule{
			{Name: "salary", Keywords: []string{"darba alga", "komand. d"}},
			{Name: "scholarship", Keywords: []string{"stipendija"}},
			{Name: "other_income"},
		},
		Expense: []models.CategoryRule{
			{Name: "food", Keywords: []string{"rimi", "maxima", "lidl"}},
			{Name: "wellness", Keywords: []string{"drogas", "aptieka", "kiko", "fielmann"}},
			{Name: "shopping", Keywords: []string{"new yorker", "h&m", "lindex", "pepco", "reserved"}},
			{Name: "gifts"},
			{Name: "entertainment"},
			{Name: "transport", Keywords: []string{"citybee", "bolt", "narvesen", "tvm"}},
			{Name: "phone", Keywords: []string{"tele2"}},
			{Name: "hobby", Keywords: []string{"nartiss.lv"}},
			{Name: "sport", Keywords: []string{"trufit.eu", "nike", "decathlon", "baltic events", "myfitness", "sportdirect", "slidotava-akropole"}},
			{Name: "citadele_investment", Keywords: []string{"lv51parx0027855351141", "lv98parx0027855350004"}},
			{Name: "retirement_fund", Keywords: []string{"pensiju fond"}},
			{Name: "roundups", Keywords: []string{"pigr"}},
		},
	}
}
