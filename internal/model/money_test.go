package model

import (
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"whole number", "99.00", 9900},
		{"with cents", "123.45", 12345},
		{"zero", "0.00", 0},
		{"empty string", "", 0},
		{"large value", "1234567.89", 123456789},
		{"no decimals", "100", 10000},
		{"one decimal", "99.9", 9990},
		{"small value", "0.01", 1},
		{"invalid string", "abc", 0},
		{"negative (unusual)", "-10.00", -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCents(tt.input)
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"whole", 9900, "99.00"},
		{"with cents", 12345, "123.45"},
		{"zero", 0, "0.00"},
		{"under one", 5, "0.05"},
		{"negative", -1000, "-10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCents(tt.input)
			if got != tt.want {
				t.Errorf("FormatCents(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCentsFormatCentsRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "99.00", "123.45", "250000.00"} {
		if got := FormatCents(ParseCents(s)); got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}
