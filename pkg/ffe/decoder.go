package ffe

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	frequencyPrefix    = "#Frequency:"
	requestNamePrefix  = "#Request Name:"
	thetaSamplesPrefix = "#No. of Theta Samples:"
	phiSamplesPrefix   = "#No. of Phi Samples:"
	headerToken        = "Theta"
)

// FrequencyTable is one decoded section: named columns over row-major float
// values, plus the section's frequency and header metadata.
type FrequencyTable struct {
	Frequency     float64
	Columns       []string
	Configuration string
	RequestName   string

	// Sample counts announced in the section header, 0 when absent.
	DeclaredThetas int
	DeclaredPhis   int

	Section   int
	StartLine int

	values []float64
}

// NewFrequencyTable builds a table from columns and rows. Every row must
// have one value per column.
func NewFrequencyTable(freq float64, columns []string, rows [][]float64) (*FrequencyTable, error) {
	values := make([]float64, 0, len(columns)*len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(columns))
		}
		values = append(values, row...)
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &FrequencyTable{Frequency: freq, Columns: cols, values: values}, nil
}

// NumRows returns the number of angular samples.
func (t *FrequencyTable) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.values) / len(t.Columns)
}

// Row returns row i. The slice aliases the table.
func (t *FrequencyTable) Row(i int) []float64 {
	w := len(t.Columns)
	return t.values[i*w : (i+1)*w]
}

// Column returns a copy of column j.
func (t *FrequencyTable) Column(j int) []float64 {
	n := t.NumRows()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = t.values[i*len(t.Columns)+j]
	}
	return out
}

// Index returns the position of the named column, or -1.
func (t *FrequencyTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DecodeSection extracts the frequency, header and numeric rows of one
// section. Rows that do not convert are skipped and reported as
// DataConversionErrors; a section without a header or without any usable
// row fails with ErrInvalidSection.
func DecodeSection(sec RawSection) (*FrequencyTable, []*DataConversionError, error) {
	table := &FrequencyTable{Section: sec.Index, StartLine: sec.StartLine}

	type pendingRow struct {
		line   int
		tokens []string
	}
	var rows []pendingRow

	for i, raw := range sec.Lines {
		line := strings.TrimSpace(raw)
		lineNo := sec.StartLine + i

		switch {
		case line == "":
		case strings.Contains(line, SectionMarker):
			table.Configuration = strings.TrimSpace(line[strings.Index(line, SectionMarker)+len(SectionMarker):])
		case strings.HasPrefix(line, frequencyPrefix):
			if f, ok := parseFrequency(line); ok {
				table.Frequency = f
			}
		case strings.HasPrefix(line, requestNamePrefix):
			table.RequestName = strings.TrimSpace(strings.TrimPrefix(line, requestNamePrefix))
		case strings.HasPrefix(line, thetaSamplesPrefix):
			table.DeclaredThetas = parseCount(strings.TrimPrefix(line, thetaSamplesPrefix))
		case strings.HasPrefix(line, phiSamplesPrefix):
			table.DeclaredPhis = parseCount(strings.TrimPrefix(line, phiSamplesPrefix))
		case strings.HasPrefix(line, "#"):
			if strings.Contains(line, headerToken) {
				if cols := parseHeader(line); len(cols) > 0 {
					table.Columns = cols
				}
			}
		case strings.HasPrefix(line, "*"):
		default:
			rows = append(rows, pendingRow{line: lineNo, tokens: strings.Fields(line)})
		}
	}

	if len(table.Columns) == 0 {
		return nil, nil, newFormatError(StageDecode, sec.Index, ErrInvalidSection, "no column header")
	}

	var skipped []*DataConversionError
	width := len(table.Columns)
	table.values = make([]float64, 0, width*len(rows))
	for _, row := range rows {
		if len(row.tokens) != width {
			skipped = append(skipped, &DataConversionError{
				Section: sec.Index,
				Line:    row.line,
				Token:   strings.Join(row.tokens, " "),
				Err:     fmt.Errorf("row has %d values for %d columns", len(row.tokens), width),
			})
			continue
		}
		parsed, err := parseRow(row.tokens)
		if err != nil {
			err.Section, err.Line = sec.Index, row.line
			skipped = append(skipped, err)
			continue
		}
		table.values = append(table.values, parsed...)
	}

	if table.NumRows() == 0 {
		return nil, skipped, newFormatError(StageDecode, sec.Index, ErrInvalidSection, "no data rows")
	}
	return table, skipped, nil
}

// parseFrequency reads the value after the last colon. Non-finite values are
// rejected so the section keeps its zero sentinel.
func parseFrequency(line string) (float64, bool) {
	text := strings.TrimSpace(line[strings.LastIndex(line, ":")+1:])
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseCount(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseHeader turns `#  "Theta"  "Phi"  "Re(Etheta)"` into column names.
func parseHeader(line string) []string {
	fields := strings.Fields(strings.TrimLeft(line, "#"))
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if name := strings.Trim(f, `"`); name != "" {
			cols = append(cols, name)
		}
	}
	return cols
}

func parseRow(tokens []string) ([]float64, *DataConversionError) {
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &DataConversionError{Token: tok, Err: err}
		}
		out[i] = v
	}
	return out, nil
}
