package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{"comma", "Date,Market,Outcome", Comma},
		{"semicolon", "Date;Market;Outcome", Semicolon},
		{"tie prefers comma", "a;b,c", Comma},
		{"quoted commas ignored", `"a;b";"c,d";e`, Semicolon},
		{"quoted semicolons ignored", `"a;b;c",d,e`, Comma},
		{"single column", "Date", Comma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.header))
		})
	}
}

func TestSplitLine_SemicolonWithQuotedComma(t *testing.T) {
	header := `"a;b";"c,d";e`
	delim := DetectDelimiter(header)

	fields := SplitLine(header, delim)
	assert.Equal(t, []string{"a;b", "c,d", "e"}, fields)

	row := SplitLine(`1;"2,5";x`, delim)
	assert.Len(t, row, 3)
	assert.Equal(t, "2,5", row[1])
}

func TestSplitLine_EscapedQuotes(t *testing.T) {
	fields := SplitLine(`"He said ""hi""",next`, Comma)

	assert.Equal(t, []string{`He said "hi"`, "next"}, fields)
}

func TestSplitLine_UnterminatedQuoteTolerated(t *testing.T) {
	fields := SplitLine(`a,"b,c`, Comma)

	// Once the quote opens, the remaining delimiters are literal text.
	assert.Equal(t, []string{"a", "b,c"}, fields)
}

func TestSplitLine_EmptyFields(t *testing.T) {
	assert.Equal(t, []string{"", "", ""}, SplitLine(",,", Comma))
	assert.Equal(t, []string{""}, SplitLine("", Comma))
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "EURUSD", "EURUSD"},
		{"whitespace", "  Win \t", "Win"},
		{"byte order mark", "\uFEFFDate", "Date"},
		{"non-breaking space", "\u00A0Long\u00A0", "Long"},
		{"wrapped quotes", `"Long"`, "Long"},
		{"wrapped with doubled quotes", `"say ""x"""`, `say "x"`},
		{"lone quote kept", `"`, `"`},
		{"inner quotes kept", `a"b`, `a"b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanValue(tt.raw))
		})
	}
}
