// Package common provides CSV helpers shared by the bank parsers and the
// export paths.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/gocarina/gocsv"
)

// Delimiter is the field separator used for CSV exports.
var Delimiter rune = ','

// SetDelimiter sets the delimiter for CSV output.
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// Tokenize splits CSV text into rows of trimmed fields.
//
// Lines are split on line breaks and scanned one rune at a time. A double quote
// toggles quoted mode; a comma outside quoted mode ends the field, inside it is
// literal. Blank lines are dropped. There is no escaped-quote support, so
// malformed input yields odd fields rather than an error.
func Tokenize(content string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, tokenizeLine(line))
	}
	return rows
}

func tokenizeLine(line string) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(fields, cleanField(current.String()))
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.Trim(s, `"`))
}

// FirstLine returns the first line of content without its line terminator.
func FirstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimRight(content, "\r")
}

// WriteTransactions marshals transactions as CSV using the configured delimiter.
func WriteTransactions(w io.Writer, transactions []models.Transaction) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(&transactions, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToCSV writes transactions to csvFile, creating its directory.
func WriteTransactionsToCSV(transactions []models.Transaction, csvFile string, logger logging.Logger) error {
	logger.Info("Writing transactions to CSV file",
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(transactions)))

	if err := os.MkdirAll(filepath.Dir(csvFile), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile) // #nosec G304 -- path chosen by the CLI user
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	return WriteTransactions(file, transactions)
}

// ParsedToTransactions converts parser output into unsaved transactions, for
// exporting a dry-run parse.
func ParsedToTransactions(parsed []models.ParsedTransaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, models.NewTransactionFromStaged(models.StagedTransaction{ParsedTransaction: p}))
	}
	return out
}
