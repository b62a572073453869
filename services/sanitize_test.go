package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Solicitud  ", "Solicitud"},
		{"<script>alert(1)</script>Hola", "Hola"},
		{"<b>Negrita</b> & más", "Negrita & más"},
		{"Tom & Jerry's \"casa\"", "Tom & Jerry's \"casa\""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in))
	}
}

func TestSanitizeOptional(t *testing.T) {
	assert.Nil(t, SanitizeOptional(nil))
	assert.Nil(t, SanitizeOptional(stringPtr("   ")))
	assert.Nil(t, SanitizeOptional(stringPtr("<i></i>")))
	got := SanitizeOptional(stringPtr(" calle 1 "))
	if assert.NotNil(t, got) {
		assert.Equal(t, "calle 1", *got)
	}
}
