// Package sheet reads the first worksheet of an uploaded statement into raw rows.
// Workbooks are parsed once; callers derive every other view from the returned rows.
package sheet

import (
	"strconv"
	"strings"
)

// Row is an ordered sequence of cell values, addressed by position.
type Row []string

// IsBlank reports whether every cell in the row is empty after trimming.
func (r Row) IsBlank() bool {
	for _, cell := range r {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ContainsAll reports whether the row holds every value as an exact cell match.
func (r Row) ContainsAll(values ...string) bool {
	for _, v := range values {
		found := false
		for _, cell := range r {
			if cell == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Record maps header text to a cell value. Empty cells are not stored.
type Record map[string]string

// Get returns the value stored under the exact header key, or "".
func (r Record) Get(key string) string {
	return r[key]
}

// Lookup finds a value by header key, preferring an exact match and falling back
// to a case-insensitive one. When several keys match case-insensitively the
// lexicographically smallest wins.
func (r Record) Lookup(key string) (string, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	match, found := "", false
	for k := range r {
		if strings.EqualFold(k, key) && (!found || k < match) {
			match, found = k, true
		}
	}
	if !found {
		return "", false
	}
	return r[match], true
}

// Keys returns the record's header keys in no particular order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// Zip pairs header cells with a data row by position. Header cells that are empty
// are skipped, and so are empty values. A repeated header key keeps the last value.
func Zip(header, row Row) Record {
	rec := make(Record, len(header))
	for i, key := range header {
		if key == "" || i >= len(row) {
			continue
		}
		if row[i] == "" {
			continue
		}
		rec[key] = row[i]
	}
	return rec
}

// Records builds the header-first view of a sheet: the first non-blank row is the
// header, every later non-blank row becomes a record keyed by it. Duplicate header
// texts get a numeric suffix ("Amount", "Amount_1") so no column is lost.
func Records(rows []Row) ([]string, []Record) {
	start := -1
	for i, row := range rows {
		if !row.IsBlank() {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil
	}

	header := uniqueHeader(rows[start])
	records := make([]Record, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if row.IsBlank() {
			continue
		}
		records = append(records, Zip(header, row))
	}
	return header, records
}

func uniqueHeader(row Row) Row {
	seen := make(map[string]int, len(row))
	header := make(Row, len(row))
	for i, cell := range row {
		name := cell
		if name == "" {
			name = "__EMPTY"
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		header[i] = name
	}
	return header
}
