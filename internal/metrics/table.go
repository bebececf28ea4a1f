package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Row is one (model, corruption) line of a severity table.
type Row struct {
	Model      string
	Corruption string
	Values     [NumSeverityColumns]float64
}

// Table is a tabulated severity result, rows grouped by model.
type Table struct {
	Rows []Row
}

// tableColumns is the number of CSV fields per row: model, corruption and
// severities 0 through 5.
const tableColumns = 2 + NumSeverityColumns

// LoadCSV reads a severity table from a CSV file.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a severity table. The first record is a header and is
// skipped; every following record must hold a model name, a corruption
// name and six numeric severity values. Names are trimmed and normalised
// to NFC so visually identical names group together.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = tableColumns
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read table: missing header row")
		}
		return nil, fmt.Errorf("read table header: %w", err)
	}

	t := &Table{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table: %w", err)
		}

		row := Row{
			Model:      normalizeName(rec[0]),
			Corruption: normalizeName(rec[1]),
		}
		for s := 0; s < NumSeverityColumns; s++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[2+s]), 64)
			if err != nil {
				line, _ := cr.FieldPos(2 + s)
				return nil, fmt.Errorf("read table line %d: severity %d: %w", line, s, err)
			}
			row.Values[s] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Columns converts the table to the parallel sequences the aggregators take.
func (t *Table) Columns() Columns {
	var c Columns
	c.Models = make([]string, len(t.Rows))
	c.Corruptions = make([]string, len(t.Rows))
	for s := range c.Severity {
		c.Severity[s] = make([]float64, len(t.Rows))
	}
	for i, row := range t.Rows {
		c.Models[i] = row.Model
		c.Corruptions[i] = row.Corruption
		for s, v := range row.Values {
			c.Severity[s][i] = v
		}
	}
	return c
}
