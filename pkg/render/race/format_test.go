package race

import (
	"math"
	"testing"

	"golang.org/x/text/language"
)

func TestFormatCounter(t *testing.T) {
	p := NewPrinter(DefaultLocale)
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999.4, "999"},
		{999.5, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
		{math.NaN(), "0"},
	}
	for _, tt := range tests {
		if got := FormatCounter(p, tt.in); got != tt.want {
			t.Errorf("FormatCounter(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := FormatCounter(NewPrinter(language.German), 1234567); got != "1.234.567" {
		t.Errorf("FormatCounter(de) = %q, want %q", got, "1.234.567")
	}
}
