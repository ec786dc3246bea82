package errors

import (
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Germany", false},
		{"unicode", "Côte d'Ivoire", false},
		{"with spaces", "United States", false},
		{"digits", "2024", false},

		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", MaxLabelLength+1), true},
		{"newline", "foo\nbar", true},
		{"tab", "foo\tbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDataset) {
				t.Errorf("ValidateLabel(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"short hex", "#fff", false},
		{"long hex", "#4a90d9", false},
		{"hex with alpha", "#4a90d9cc", false},
		{"rgb", "rgb(10, 20, 30)", false},
		{"rgba", "rgba(0,0,0,0.5)", false},
		{"hsl", "hsl(120, 50%, 50%)", false},
		{"named", "steelblue", false},

		{"empty", "", true},
		{"bad hex", "#ggg", true},
		{"hex wrong length", "#12345", true},
		{"injection", "red;stroke:blue", true},
		{"quote", `red"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"https", "https://flagcdn.com/w80/de.png", false},
		{"http", "http://example.com/a.png", false},
		{"data uri", "data:image/png;base64,iVBORw0KGgo=", false},
		{"relative", "flags/de.png", false},

		{"malformed data uri", "data:image/png", true},
		{"absolute path", "/etc/passwd", true},
		{"traversal", "../secret.png", true},
		{"ftp", "ftp://example.com/a.png", true},
		{"control char", "a\x01.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com", false},
		{"http", "http://example.com/x", false},
		{"empty", "", true},
		{"no scheme", "example.com", true},
		{"file scheme", "file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "data/gdp.csv", false},
		{"valid nested", "assets/flags/de.png", false},
		{"valid filename only", "race.toml", false},
		{"valid with dots", "v1.2.3/data.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidConfig,
		ErrCodeInvalidDataset,
		ErrCodeInvalidFormat,
		ErrCodeInvalidIndex,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
