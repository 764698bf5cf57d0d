// Package sniffer decides which layout an uploaded sheet uses.
// A sheet is canonical when its first record already carries the type, amount and
// description fields; anything else is handed to the bank-statement normalizer.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/FACorreiaa/statement-insights/internal/domain/statement"
	"github.com/FACorreiaa/statement-insights/internal/domain/statement/sheet"
)

// canonicalFields must all appear (case-insensitively) among the first record's keys.
var canonicalFields = []string{"type", "amount", "description"}

// Detection is the outcome of inspecting a sheet.
type Detection struct {
	Shape       statement.Shape
	Header      []string
	Records     []sheet.Record
	Fingerprint string
}

// IsCanonical reports whether records already match the canonical schema.
// Only the first record is inspected. An empty slice counts as canonical: there
// is nothing to transform.
func IsCanonical(records []sheet.Record) bool {
	if len(records) == 0 {
		return true
	}

	keys := make(map[string]struct{}, len(records[0]))
	for k := range records[0] {
		keys[strings.ToLower(k)] = struct{}{}
	}
	for _, field := range canonicalFields {
		if _, ok := keys[field]; !ok {
			return false
		}
	}
	return true
}

// Detect builds the record view from raw rows and classifies it.
func Detect(rows []sheet.Row) Detection {
	header, records := sheet.Records(rows)

	d := Detection{
		Header:      header,
		Records:     records,
		Fingerprint: Fingerprint(header),
	}

	switch {
	case len(records) == 0:
		d.Shape = statement.ShapeEmpty
	case IsCanonical(records):
		d.Shape = statement.ShapeCanonical
	default:
		d.Shape = statement.ShapeBankStatement
	}
	return d
}

// Fingerprint hashes the normalized header so repeat uploads of the same bank
// export can be recognised in logs and metrics.
func Fingerprint(header []string) string {
	var normalized []string
	for _, h := range header {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}
	if len(normalized) == 0 {
		return ""
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
