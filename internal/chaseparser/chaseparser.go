// Package chaseparser parses Chase checking-account CSV exports.
package chaseparser

import (
	"strings"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
	"fjacquet/finance-analyzer/internal/parser"
	"fjacquet/finance-analyzer/internal/parsererror"
)

// BankName is reported as the bank format of Chase uploads.
const BankName = "Chase"

// minRowFields is the smallest row that can carry a transaction.
const minRowFields = 3

// ChaseParser implements models.BankParser for Chase exports such as:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
type ChaseParser struct {
	parser.BaseParser
}

// NewParser creates a ChaseParser.
func NewParser(logger logging.Logger) *ChaseParser {
	return &ChaseParser{BaseParser: parser.NewBaseParser(logger)}
}

func (p *ChaseParser) BankName() string {
	return BankName
}

// DetectFormat reports whether the header line names the posting date,
// description and amount columns.
func (p *ChaseParser) DetectFormat(content string) bool {
	header := p.HeaderLine(content)
	return strings.Contains(header, "posting date") &&
		strings.Contains(header, "description") &&
		strings.Contains(header, "amount")
}

type columns struct {
	date, description, amount, kind int
}

func (c columns) required() int {
	return max(c.date, c.description, c.amount)
}

func (p *ChaseParser) resolveColumns(headers []string) (columns, error) {
	cols := columns{
		date:        p.ColumnIndex(headers, "posting date", "date"),
		description: p.ColumnIndex(headers, "description"),
		amount:      p.ColumnIndex(headers, "amount"),
		kind:        p.ColumnIndex(headers, "type"),
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "posting date")
	}
	if cols.description < 0 {
		missing = append(missing, "description")
	}
	if cols.amount < 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return cols, &parsererror.MissingColumnsError{Parser: BankName, Columns: missing}
	}
	return cols, nil
}

// Parse extracts transactions from a Chase export. A header without date,
// description or amount columns fails the whole file; individual bad rows are
// logged and dropped, as are zero-amount rows.
func (p *ChaseParser) Parse(content string) ([]models.ParsedTransaction, error) {
	rows := p.Tokenize(content)
	if len(rows) == 0 {
		return nil, &parsererror.MissingColumnsError{
			Parser:  BankName,
			Columns: []string{"posting date", "description", "amount"},
		}
	}

	cols, err := p.resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	logger := p.GetLogger()
	transactions := make([]models.ParsedTransaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) < minRowFields {
			logger.Debug("Skipping short row",
				logging.F(logging.FieldRow, rowNum),
				logging.F(logging.FieldCount, len(row)))
			continue
		}

		tx, keep, err := p.parseRow(row, rowNum, cols)
		if err != nil {
			p.SkipRow(BankName, rowNum, "unparsable row", err)
			continue
		}
		if keep {
			transactions = append(transactions, tx)
		}
	}

	logger.Info("Parsed Chase statement",
		logging.F(logging.FieldBank, BankName),
		logging.F(logging.FieldCount, len(transactions)))
	return transactions, nil
}

// parseRow returns keep=false for rows that are valid but carry no money.
func (p *ChaseParser) parseRow(row []string, rowNum int, cols columns) (models.ParsedTransaction, bool, error) {
	if cols.required() >= len(row) {
		return models.ParsedTransaction{}, false, &parsererror.ParseError{
			Parser: BankName,
			Row:    rowNum,
			Field:  "row",
			Value:  strings.Join(row, ","),
			Err:    errTooFewFields,
		}
	}

	rawAmount := row[cols.amount]
	amount, err := p.NormalizeAmount(rawAmount)
	if err != nil {
		return models.ParsedTransaction{}, false, &parsererror.ParseError{
			Parser: BankName, Row: rowNum, Field: "amount", Value: rawAmount, Err: err,
		}
	}
	if amount.IsZero() {
		p.GetLogger().Debug("Skipping zero-amount row", logging.F(logging.FieldRow, rowNum))
		return models.ParsedTransaction{}, false, nil
	}

	rawDate := row[cols.date]
	date, err := p.ParseDate(rawDate)
	if err != nil {
		return models.ParsedTransaction{}, false, &parsererror.ParseError{
			Parser: BankName, Row: rowNum, Field: "date", Value: rawDate, Err: err,
		}
	}

	kind := ""
	if cols.kind >= 0 && cols.kind < len(row) {
		kind = row[cols.kind]
	}

	description := row[cols.description]
	return models.ParsedTransaction{
		Date:                models.NewDate(date),
		Description:         description,
		Amount:              amount.Abs(),
		Type:                direction(kind, amount.IsNegative()),
		OriginalDescription: description,
		Merchant:            p.ExtractMerchant(description),
	}, true, nil
}

// direction prefers an explicit debit/credit type value and falls back to the
// amount sign.
func direction(kind string, negative bool) models.TransactionType {
	kind = strings.ToLower(kind)
	switch {
	case strings.Contains(kind, "debit"):
		return models.TypeDebit
	case strings.Contains(kind, "credit"):
		return models.TypeCredit
	case negative:
		return models.TypeDebit
	default:
		return models.TypeCredit
	}
}
