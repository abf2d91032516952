// Package csvimport turns loosely formatted trade spreadsheets into validated trades.
//
// The package is pure: it takes CSV text and a column mapping and returns
// rows plus row-scoped errors. It never reads files and never logs.
package csvimport

import (
	"strings"
)

// Supported delimiters.
const (
	Comma     = ','
	Semicolon = ';'
)

// cutset trimmed from every value: whitespace plus byte-order mark and non-breaking space.
const cutset = " \t\r\n\v\f\uFEFF\u00A0"

// DetectDelimiter picks the delimiter of a header line.
// Semicolon wins only when it strictly outnumbers commas outside quotes.
func DetectDelimiter(header string) rune {
	commas, semicolons := 0, 0
	inQuotes := false
	for _, r := range header {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case Comma:
			if !inQuotes {
				commas++
			}
		case Semicolon:
			if !inQuotes {
				semicolons++
			}
		}
	}
	if semicolons > commas {
		return Semicolon
	}
	return Comma
}

// SplitLine tokenizes one CSV line.
// A quote toggles quoted state; a doubled quote inside quotes emits one literal quote.
// The delimiter only splits outside quotes. An unterminated quote is tolerated.
func SplitLine(line string, delim rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// CleanValue trims a raw token and unwraps a fully quoted value,
// unescaping doubled quotes inside it.
func CleanValue(raw string) string {
	v := strings.Trim(raw, cutset)
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = strings.ReplaceAll(v[1:len(v)-1], `""`, `"`)
		v = strings.Trim(v, cutset)
	}
	return v
}

// isBlank reports whether a line carries nothing but whitespace.
func isBlank(line string) bool {
	return strings.Trim(line, cutset) == ""
}
