package models

// BankParser recognizes and parses one bank's CSV export.
type BankParser interface {
	// BankName is the human-readable bank name reported on upload jobs.
	BankName() string
	// DetectFormat reports whether content looks like this bank's export.
	DetectFormat(content string) bool
	// Parse extracts transactions. It fails for the whole file only when the
	// header is unusable; bad rows are skipped.
	Parse(content string) ([]ParsedTransaction, error)
}
