package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForCLI_IncludesHintAndCode(t *testing.T) {
	err := ImmutableIndexError("delete_documents")

	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: delete_documents")
	assert.Contains(t, out, "Hint:")
	assert.Contains(t, out, "Code: ERR_601_IMMUTABLE_INDEX")
}

func TestFormatForCLI_WrapsPlainError(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))

	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatJSON_RoundTrips(t *testing.T) {
	err := New(ErrCodeIndexCorrupt, "index_meta.json missing", errors.New("stat failed")).
		WithDetail("path", "/data/corpus")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ErrCodeIndexCorrupt, decoded["code"])
	assert.Equal(t, "FATAL", decoded["severity"])
	assert.Equal(t, "stat failed", decoded["cause"])
}

func TestFormatForLog_FlattensDetails(t *testing.T) {
	err := New(ErrCodeSearchFailed, "query failed", nil).
		WithDetail("query", "stemming")

	attrs := FormatForLog(err)

	assert.Equal(t, ErrCodeSearchFailed, attrs["error_code"])
	assert.Equal(t, "stemming", attrs["detail_query"])
}

func TestFormatForLog_NilAndPlain(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
	assert.Equal(t, map[string]any{"error": "plain"}, FormatForLog(errors.New("plain")))
}
