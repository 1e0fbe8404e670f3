package csvimport

import (
	"errors"
)

// Fatal upload errors. Anything else is reported per row.
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("invalid file encoding")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrMalformedCSV    = errors.New("malformed CSV")
)

// RowError is the failure of one data row
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ErrorCollection keeps row errors up to a limit while counting all of them
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection. A non-positive limit keeps every error.
func NewErrorCollection(maxErrors int) *ErrorCollection {
	return &ErrorCollection{errors: make([]RowError, 0), maxErrors: maxErrors}
}

// Add records a row failure
func (ec *ErrorCollection) Add(row int, err error) {
	ec.totalCount++
	if ec.maxErrors <= 0 || len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, RowError{Row: row, Error: err.Error()})
	}
}

// Errors returns the kept errors in row order
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the number of failures, including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// IsTruncated reports whether some errors were dropped
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > len(ec.errors)
}
