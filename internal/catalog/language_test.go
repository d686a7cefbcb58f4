// internal/catalog/language_test.go
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"en", "en"},
		{"EN", "en"},
		{"English", "en"},
		{"spanish", "es"},
		{"Español", "es"},
		{"espanol", "es"},
		{"es-MX", "es"},
		{"fr", "fr"},
		{"Klingon!", "klingon!"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLanguage(tt.input))
		})
	}
}

func TestIsSpanish(t *testing.T) {
	assert.True(t, IsSpanish("es"))
	assert.True(t, IsSpanish("Spanish"))
	assert.True(t, IsSpanish("es-419"))
	assert.False(t, IsSpanish("en"))
	assert.False(t, IsSpanish(""))
}
