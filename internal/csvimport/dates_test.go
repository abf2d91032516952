package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"2024-01-05", "2024-01-05", true},
		{"2024-01-05T10:30:00Z", "2024-01-05", true},
		{"2024-01-05 10:30:00", "2024-01-05", true},
		{"05.01.2024", "2024-01-05", true},
		{"05/01/2024", "2024-01-05", true},
		{"5.1.2024", "2024-01-05", true},
		{"5/1/2024", "2024-01-05", true},
		{"2024-1-5", "2024-01-05", true},
		{"2024.1.5", "2024-01-05", true},
		// Day/month read first for ambiguous slashes.
		{"03/04/2024", "2024-04-03", true},
		// Falls back to month/day when day/month is not a calendar date.
		{"12/25/2024", "2024-12-25", true},
		{"12-25-2024", "2024-12-25", true},
		{"03-04-2024", "2024-03-04", true},
		{"29.02.2024", "2024-02-29", true},
		{"29.02.2023", "", false},
		{"31/02/2024", "", false},
		{"2024-13-01", "", false},
		{"yesterday", "", false},
		{"05 Jan 2024", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateParts(t *testing.T) {
	tests := []struct {
		iso     string
		day     string
		quarter string
	}{
		{"2024-01-05", "Friday", "Q1"},
		{"2024-03-31", "Sunday", "Q1"},
		{"2024-04-01", "Monday", "Q2"},
		{"2024-09-30", "Monday", "Q3"},
		{"2024-12-25", "Wednesday", "Q4"},
	}

	for _, tt := range tests {
		t.Run(tt.iso, func(t *testing.T) {
			day, quarter := dateParts(tt.iso)
			assert.Equal(t, tt.day, day)
			assert.Equal(t, tt.quarter, quarter)
		})
	}
}
