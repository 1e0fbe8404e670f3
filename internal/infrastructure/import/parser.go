// Package csvimport reads spreadsheet exports for bulk imports.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads a CSV document with a header row.
// Input is UTF-8 with an optional BOM; anything that is not valid UTF-8 is
// decoded as Windows-1252, which is what spreadsheet tools export by default.
type Parser struct {
	reader    *csv.Reader
	headers   []string
	headerMap map[string]int
	index     int
	transcode bool
}

// ParserOption configures a Parser
type ParserOption func(*csv.Reader)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(r *csv.Reader) { r.Comma = d }
}

// NewParser buffers r, normalizes its encoding and reads the header row.
// Header names are trimmed and lower-cased.
func NewParser(r io.Reader, opts ...ParserOption) (*Parser, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}

	p := &Parser{headerMap: make(map[string]int)}
	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		raw = decoded
		p.transcode = true
	}

	p.reader = csv.NewReader(bytes.NewReader(raw))
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(p.reader)
	}

	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		p.headers = append(p.headers, name)
		if name == "" {
			continue
		}
		if _, dup := p.headerMap[name]; !dup {
			p.headerMap[name] = i
		}
	}
	if len(p.headerMap) == 0 {
		return nil, ErrMissingHeader
	}
	return p, nil
}

// Transcoded reports whether the input was decoded from Windows-1252
func (p *Parser) Transcoded() bool {
	return p.transcode
}

// Headers returns the normalized header names in column order
func (p *Parser) Headers() []string {
	return p.headers
}

// HasHeader checks if a column exists
func (p *Parser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// MissingHeaders returns the required columns absent from the header
func (p *Parser) MissingHeaders(required ...string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Next returns the next data row, or io.EOF.
// Rows are numbered from 1 in data order. Lines with no characters at all are
// skipped by the CSV reader; a record of blank cells is still a row.
func (p *Parser) Next() (*Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	row := &Row{Data: make(map[string]string, len(p.headerMap))}
	for name, i := range p.headerMap {
		if i < len(record) {
			row.Data[name] = strings.TrimSpace(record[i])
		}
	}
	p.index++
	row.Index = p.index
	return row, nil
}

// ReadAll returns every remaining data row
func (p *Parser) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}
