// Package parser provides the capabilities shared by every bank parser.
package parser

import (
	"strings"
	"time"

	"fjacquet/finance-analyzer/internal/common"
	"fjacquet/finance-analyzer/internal/currencyutils"
	"fjacquet/finance-analyzer/internal/dateutils"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/textutils"

	"github.com/shopspring/decimal"
)

// BaseParser carries the logger and the normalization helpers. Bank parsers
// embed it:
//
//	type ChaseParser struct {
//		parser.BaseParser
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a BaseParser. A nil logger falls back to a default one.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{logger: logger}
}

func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// Tokenize splits CSV content into rows.
func (b *BaseParser) Tokenize(content string) [][]string {
	return common.Tokenize(content)
}

// HeaderLine returns the lowercased first line of content, used by detectors.
func (b *BaseParser) HeaderLine(content string) string {
	return strings.ToLower(common.FirstLine(content))
}

func (b *BaseParser) NormalizeAmount(raw string) (decimal.Decimal, error) {
	return currencyutils.NormalizeAmount(raw)
}

func (b *BaseParser) ParseDate(raw string) (time.Time, error) {
	return dateutils.ParseStatementDate(raw)
}

func (b *BaseParser) ExtractMerchant(description string) string {
	return textutils.ExtractMerchant(description)
}

// ColumnIndex returns the index of the first header containing one of the
// candidates, trying candidates in order. Headers are compared lowercased.
// It returns -1 when nothing matches.
func (b *BaseParser) ColumnIndex(headers []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, h := range headers {
			if strings.Contains(strings.ToLower(h), candidate) {
				return i
			}
		}
	}
	return -1
}

// SkipRow logs a dropped row.
func (b *BaseParser) SkipRow(bank string, row int, reason string, err error) {
	l := b.logger
	if err != nil {
		l = l.WithError(err)
	}
	l.Warn("Skipping row",
		logging.F(logging.FieldBank, bank),
		logging.F(logging.FieldRow, row),
		logging.F(logging.FieldReason, reason))
}
