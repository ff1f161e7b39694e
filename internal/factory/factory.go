// Package factory holds the ordered registry of bank parsers and picks the
// one that recognizes an uploaded file.
package factory

import (
	"fmt"
	"sync"

	"fjacquet/finance-analyzer/internal/chaseparser"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
	"fjacquet/finance-analyzer/internal/parsererror"
)

// Result is the outcome of parsing a statement.
type Result struct {
	Bank         string
	Transactions []models.ParsedTransaction
}

// Registry is an ordered list of bank parsers. Registration order is detection
// precedence: the first parser whose detector matches wins.
type Registry struct {
	mu      sync.RWMutex
	parsers []models.BankParser
	logger  logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Registry{logger: logger}
}

// DefaultRegistry returns a registry with every supported bank registered.
func DefaultRegistry(logger logging.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(chaseparser.NewParser(r.logger))
	return r
}

// Register appends p. It panics on a duplicate bank name, which is a wiring bug.
func (r *Registry) Register(p models.BankParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.parsers {
		if existing.BankName() == p.BankName() {
			panic(fmt.Sprintf("bank parser %q registered twice", p.BankName()))
		}
	}
	r.parsers = append(r.parsers, p)
}

// SupportedBanks lists registered bank names in precedence order.
func (r *Registry) SupportedBanks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.BankName())
	}
	return names
}

// Detect returns the first parser that recognizes content.
func (r *Registry) Detect(content string) (models.BankParser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.DetectFormat(content) {
			r.logger.Debug("Detected bank format", logging.F(logging.FieldBank, p.BankName()))
			return p, nil
		}
	}
	supported := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		supported = append(supported, p.BankName())
	}
	return nil, &parsererror.FormatError{Supported: supported}
}

// Parse detects the bank and parses content with its parser.
func (r *Registry) Parse(content string) (*Result, error) {
	p, err := r.Detect(content)
	if err != nil {
		return nil, err
	}
	txs, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	return &Result{Bank: p.BankName(), Transactions: txs}, nil
}
