package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrNoSheets          = errors.New("workbook has no worksheets")
	ErrUnreadable        = errors.New("file could not be read as a spreadsheet")
)

// Sheet is a single worksheet read as raw rows.
type Sheet struct {
	Name string
	Rows []Row
}

// ReadOptions tunes how a workbook is read.
type ReadOptions struct {
	// SheetName selects a worksheet by name. Empty, or a name that does not
	// exist, falls back to the first sheet in workbook order.
	SheetName string
}

// Format identifies how a file's bytes are decoded.
type Format string

const (
	FormatWorkbook  Format = "workbook"
	FormatDelimited Format = "delimited"
)

// DetectFormat picks a decoder from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatWorkbook, nil
	case ".csv", ".tsv", ".txt":
		return FormatDelimited, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Read decodes the first (or selected) worksheet of the file into raw rows.
func Read(filename string, r io.Reader, opts ReadOptions) (*Sheet, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatWorkbook:
		return readWorkbook(r, opts)
	default:
		return readDelimited(r)
	}
}

func readWorkbook(r io.Reader, opts ReadOptions) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrUnreadable, err)
	}
	defer f.Close()

	name := pickSheet(f.GetSheetList(), opts.SheetName)
	if name == "" {
		return nil, ErrNoSheets
	}

	cells, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	rows := make([]Row, len(cells))
	for i, c := range cells {
		rows[i] = trimTrailing(c)
	}
	return &Sheet{Name: name, Rows: rows}, nil
}

// pickSheet returns the requested sheet when present, otherwise the first one.
func pickSheet(sheets []string, preferred string) string {
	if len(sheets) == 0 {
		return ""
	}
	if preferred != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, preferred) {
				return s
			}
		}
	}
	return sheets[0]
}

func readDelimited(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse delimited file: %v", ErrUnreadable, err)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = trimTrailing(rec)
	}
	return &Sheet{Name: "Sheet1", Rows: rows}, nil
}

// sniffDelimiter picks the separator that occurs most often on the first few
// non-empty lines. Bank exports put a short preamble above the table, so the
// widest line wins rather than the first one.
func sniffDelimiter(data []byte) rune {
	lines := strings.Split(string(data), "\n")
	best, bestCount := ',', 0
	for i, line := range lines {
		if i > 20 {
			break
		}
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" {
			continue
		}
		d, count := detectDelimiter(line)
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{';', '\t', ',', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

func trimTrailing(cells []string) Row {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return Row(cells[:end])
}
