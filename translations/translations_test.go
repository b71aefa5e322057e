package translations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want Language
	}{
		{"en", English},
		{"es", Spanish},
		{"ca", Catalan},
		{"fr", Spanish},
		{"", Spanish},
		{"EN", Spanish},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "input %q", tc.in)
	}
}

func TestForKnownLanguages(t *testing.T) {
	for _, lang := range []Language{English, Spanish, Catalan} {
		tr := For(lang)
		assert.NotEmpty(t, tr.ChatbotWelcome, "welcome for %s", lang)
		assert.Len(t, tr.ChatbotOptions, 3, "options for %s", lang)
	}
}

func TestForUnknownLanguageFallsBackToSpanish(t *testing.T) {
	assert.Equal(t, For(Spanish), For(Language("de")))
}
