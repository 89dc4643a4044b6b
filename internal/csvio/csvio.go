// Package csvio reads and writes the member CSV interchange format.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
)

const bom = "\ufeff"

// Header is the column order written by Encode.
var Header = []string{"name", "phone", "type", "balance"}

// Row is one data line keyed by lower-cased header names. Missing columns
// read as empty strings.
type Row struct {
	Line   int
	fields map[string]string
}

// Get returns the raw value of column name.
func (r Row) Get(name string) string {
	return r.fields[name]
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

// Decode parses header-delimited CSV content. Blank lines are skipped and a
// header-only or empty document yields no rows.
func Decode(content string) ([]Row, error) {
	r := csv.NewReader(strings.NewReader(StripBOM(content)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := r.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(rec) {
				fields[name] = rec[i]
			}
		}
		rows = append(rows, Row{Line: line, fields: fields})
	}
	return rows, nil
}

// Encode writes members as CSV, quoting fields that need it.
func Encode(w io.Writer, members []models.Member) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, m := range members {
		rec := []string{
			m.Name,
			m.Phone,
			strconv.Itoa(int(m.Type)),
			strconv.FormatFloat(m.Balance, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
