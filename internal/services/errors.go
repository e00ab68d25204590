package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is a rejected request. Fields holds per-field messages
// when they are known.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StockError rejects an order line that asks for more than is in stock.
type StockError struct {
	VariantID string
	Title     string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Produto \"%s\" não tem stock suficiente. Disponível: %d, Solicitado: %d", e.Title, e.Available, e.Requested)
}

// StockCheckError means the stock of a line could not be read.
type StockCheckError struct {
	VariantID string
	Err       error
}

func (e *StockCheckError) Error() string {
	return fmt.Sprintf("check stock of variant %s: %v", e.VariantID, e.Err)
}

func (e *StockCheckError) Unwrap() error { return e.Err }
