package models

import "time"

// Category groups transactions. System categories are seeded and cannot be deleted.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryConfig is a category as declared in the categories YAML file.
// Keywords drive the keyword categorization strategy.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Icon     string   `yaml:"icon,omitempty"`
	Color    string   `yaml:"color,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// CategoriesFile is the top-level YAML document.
type CategoriesFile struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// CategorySuggestion is what a categorizer proposes for one transaction.
// TransactionID is the index of the transaction within the submitted batch.
type CategorySuggestion struct {
	TransactionID     int                   `json:"transactionId"`
	SuggestedCategory string                `json:"suggestedCategory"`
	Confidence        float64               `json:"confidence"`
	Reasoning         string                `json:"reasoning"`
	Alternatives      []AlternativeCategory `json:"alternatives,omitempty"`
}

type AlternativeCategory struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// CategoryCorrection overrides the category of a staged transaction at confirm time.
type CategoryCorrection struct {
	TransactionID int   `json:"transactionId"`
	CategoryID    int64 `json:"categoryId"`
}
