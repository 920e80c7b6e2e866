package display

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedField is returned when a compact field cannot be unquoted.
var ErrMalformedField = errors.New("malformed compact field")

// QuoteField quotes s for the compact format when it contains a comma,
// colon, double quote or line break. Embedded quotes are doubled.
func QuoteField(s string) string {
	if !strings.ContainsAny(s, ",:\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// UnquoteField reverses QuoteField.
func UnquoteField(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		return s, nil
	}
	if len(s) < 2 || !strings.HasSuffix(s, `"`) {
		return "", fmt.Errorf("%w: unterminated quote in %q", ErrMalformedField, s)
	}

	inner := s[1 : len(s)-1]
	if strings.Contains(strings.ReplaceAll(inner, `""`, ""), `"`) {
		return "", fmt.Errorf("%w: stray quote in %q", ErrMalformedField, s)
	}
	return strings.ReplaceAll(inner, `""`, `"`), nil
}

// SplitCompactRow splits one compact data row, with or without its leading
// tab, into unquoted fields.
func SplitCompactRow(row string) ([]string, error) {
	row = strings.TrimPrefix(row, "\t")
	row = strings.TrimSuffix(row, "\n")
	if row == "" {
		return []string{""}, nil
	}

	r := csv.NewReader(strings.NewReader(row))
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedField, err)
	}
	return fields, nil
}
