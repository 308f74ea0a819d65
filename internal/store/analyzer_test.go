package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzerForLanguage(t *testing.T) {
	tests := []struct {
		language string
		analyzer string
		wantErr  bool
	}{
		{"english", "en", false},
		{"en", "en", false},
		{"", "en", false}, // default
		{"german", "de", false},
		{"French", "fr", false},
		{"spanish", "es", false},
		{"italian", "it", false},
		{"portuguese", "pt", false},
		{"dutch", "nl", false},
		{"russian", "ru", false},
		{"none", plainAnalyzerName, false},
		{"klingon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			analyzer, err := analyzerForLanguage(tt.language)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.analyzer, analyzer)
		})
	}
}

func TestSupportedLanguage(t *testing.T) {
	assert.True(t, SupportedLanguage("english"))
	assert.True(t, SupportedLanguage("none"))
	assert.False(t, SupportedLanguage("klingon"))
}

func TestBuildIndexMapping_ContentStoredAndAnalyzed(t *testing.T) {
	m, err := buildIndexMapping("english")
	require.NoError(t, err)

	assert.Equal(t, "en", m.DefaultAnalyzer)
	require.NotNil(t, m.DefaultMapping)

	fields, ok := m.DefaultMapping.Properties[fieldContent]
	require.True(t, ok)
	require.Len(t, fields.Fields, 1)
	assert.True(t, fields.Fields[0].Store)
	assert.True(t, fields.Fields[0].Index)

	meta, ok := m.DefaultMapping.Properties[fieldMeta]
	require.True(t, ok)
	require.Len(t, meta.Fields, 1)
	assert.True(t, meta.Fields[0].Store)
	assert.False(t, meta.Fields[0].Index)
}

func TestBuildIndexMapping_RejectsUnknownLanguage(t *testing.T) {
	_, err := buildIndexMapping("klingon")
	assert.Error(t, err)
}
