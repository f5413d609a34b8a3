package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"https url", "https://example.com/path?q=1", true},
		{"http url with port", "http://localhost:8080", true},
		{"ftp url", "ftp://files.example.com/a.txt", true},
		{"not a url", "not-a-url", false},
		{"missing scheme", "example.com/path", false},
		{"missing host", "http://", false},
		{"empty", "", false},
		{"relative path", "/just/a/path", false},
		{"mailto has no host", "mailto:user@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.input))
		})
	}
}

func TestIsValidShortcode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"alphanumeric", "abc123", true},
		{"with dash and underscore", "my_link-1", true},
		{"single char", "a", true},
		{"max length", strings.Repeat("a", MaxShortcodeLength), true},
		{"too long", strings.Repeat("a", MaxShortcodeLength+1), false},
		{"empty", "", false},
		{"space", "ab cd", false},
		{"slash", "ab/cd", false},
		{"unicode", "ссылка", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidShortcode(tt.input))
		})
	}
}

func TestSanitizeShortcode(t *testing.T) {
	assert.Equal(t, "mylink", SanitizeShortcode("  mylink  "))
	assert.Equal(t, "mylink", SanitizeShortcode("my link!"))
	assert.Equal(t, "a_b-c", SanitizeShortcode("a_b-c"))
	assert.Equal(t, "", SanitizeShortcode("  !!!  "))
	assert.Equal(t, "", SanitizeShortcode(""))
}
