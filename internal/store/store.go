// Package store loads the category definitions (names, display attributes and
// matching keywords) from a YAML file.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultCategoriesFile is looked up when no file is configured.
const DefaultCategoriesFile = "categories.yaml"

// CategoryStore reads category definitions.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store for categoriesFile.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &CategoryStore{CategoriesFile: categoriesFile, logger: logger}
}

// FindConfigFile looks for filename as given, then under ./config and
// ~/.config/finance-analyzer.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "finance-analyzer", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadCategories reads the categories file. When the file does not exist the
// built-in defaults are returned.
func (s *CategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}

	path, err := s.FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Categories file not found, using defaults", logging.F(logging.FieldFile, filename))
			return DefaultCategories(), nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- configured path
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var doc models.CategoriesFile
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Categories) == 0 {
		// Also accept a bare list without the top-level key.
		var list []models.CategoryConfig
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			if err == nil {
				err = listErr
			}
			return nil, fmt.Errorf("error parsing categories file %s: %w", path, err)
		}
		doc.Categories = list
	}

	if err := validateCategories(doc.Categories); err != nil {
		return nil, fmt.Errorf("invalid categories file %s: %w", path, err)
	}

	s.logger.Debug("Loaded categories",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(doc.Categories)))
	return doc.Categories, nil
}

// SaveCategories writes categories to the configured file.
func (s *CategoryStore) SaveCategories(categories []models.CategoryConfig) error {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}
	if err := validateCategories(categories); err != nil {
		return err
	}
	data, err := yaml.Marshal(models.CategoriesFile{Categories: categories})
	if err != nil {
		return fmt.Errorf("error encoding categories: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, models.PermissionDataFile); err != nil {
		return fmt.Errorf("error writing categories file: %w", err)
	}
	return nil
}

func validateCategories(categories []models.CategoryConfig) error {
	seen := make(map[string]bool, len(categories))
	for i, c := range categories {
		if c.Name == "" {
			return fmt.Errorf("category %d has no name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("category %q declared twice", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// DefaultCategories is the built-in category set.
func DefaultCategories() []models.CategoryConfig {
	return []models.CategoryConfig{
		{Name: "Groceries", Icon: "🛒", Color: "#4CAF50", Keywords: []string{"WHOLE FOODS", "TRADER JOE", "KROGER", "SAFEWAY"}},
		{Name: "Dining", Icon: "🍽️", Color: "#FF9800", Keywords: []string{"STARBUCKS", "CHIPOTLE", "DOORDASH", "UBER EATS"}},
		{Name: "Transportation", Icon: "🚗", Color: "#2196F3", Keywords: []string{"SHELL", "CHEVRON", "UBER TRIP", "LYFT"}},
		{Name: "Shopping", Icon: "🛍️", Color: "#9C27B0", Keywords: []string{"AMAZON", "TARGET", "BEST BUY"}},
		{Name: "Entertainment", Icon: "🎬", Color: "#E91E63"},
		{Name: "Subscriptions", Icon: "🔁", Color: "#673AB7", Keywords: []string{"NETFLIX", "SPOTIFY", "HULU"}},
		{Name: "Utilities", Icon: "💡", Color: "#607D8B", Keywords: []string{"COMCAST", "PG&E", "VERIZON"}},
		{Name: "Housing", Icon: "🏠", Color: "#795548", Keywords: []string{"RENT", "MORTGAGE"}},
		{Name: "Healthcare", Icon: "🏥", Color: "#F44336", Keywords: []string{"CVS", "WALGREENS", "PHARMACY"}},
		{Name: "Travel", Icon: "✈️", Color: "#00BCD4", Keywords: []string{"AIRLINES", "HOTEL", "AIRBNB"}},
		{Name: "Income", Icon: "💰", Color: "#8BC34A", Keywords: []string{"PAYROLL", "DIRECT DEP"}},
		{Name: "Transfer", Icon: "🔄", Color: "#9E9E9E", Keywords: []string{"ZELLE", "VENMO"}},
		{Name: "Fees", Icon: "🏦", Color: "#FF5722", Keywords: []string{"SERVICE FEE", "OVERDRAFT"}},
		{Name: "Other", Icon: "📦", Color: "#BDBDBD"},
	}
}
