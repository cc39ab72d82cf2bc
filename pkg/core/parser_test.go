package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWBS(t *testing.T) {
	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "wbs.json")

	content := `{
  "WP3 Backend": ["Design schema", "Write migrations", "Design schema"],
  "WP1 Frontend": ["Login page"],
  "WP2 Empty": []
}`

	err := os.WriteFile(tempFile, []byte(content), 0644)
	require.NoError(t, err)

	wbs, err := ParseWBS(tempFile)
	require.NoError(t, err)
	require.Len(t, wbs, 3, "Expected to find 3 work packages")

	// Order follows the file, not the key order
	assert.Equal(t, "WP3 Backend", wbs[0].Name)
	assert.Equal(t, []string{"Design schema", "Write migrations", "Design schema"}, wbs[0].Issues)
	assert.Equal(t, "WP1 Frontend", wbs[1].Name)
	assert.Equal(t, []string{"Login page"}, wbs[1].Issues)
	assert.Equal(t, "WP2 Empty", wbs[2].Name)
	assert.Empty(t, wbs[2].Issues)

	assert.Equal(t, 4, wbs.IssueCount())
}

func TestParseWBS_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := ParseWBS(path)
	require.Error(t, err)

	var inputErr *InputFormatError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, path, inputErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseWBS_InvalidContentCarriesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0644))

	_, err := ParseWBS(path)

	var inputErr *InputFormatError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, path, inputErr.Path)
	assert.Contains(t, err.Error(), "top-level value must be an object, got array")
}

func TestDecodeWBS_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "Empty input",
			content: "",
			wantErr: "invalid JSON",
		},
		{
			name:    "Malformed JSON",
			content: `{"WP1": ["A",`,
			wantErr: "invalid JSON",
		},
		{
			name:    "Top-level string",
			content: `"WP1"`,
			wantErr: "top-level value must be an object, got string",
		},
		{
			name:    "Top-level null",
			content: `null`,
			wantErr: "top-level value must be an object, got null",
		},
		{
			name:    "Value is an object",
			content: `{"WP1": {"A": 1}}`,
			wantErr: `value of "WP1" must be an array of strings`,
		},
		{
			name:    "Value is null",
			content: `{"WP1": null}`,
			wantErr: `value of "WP1" must be an array of strings`,
		},
		{
			name:    "Item is a number",
			content: `{"WP1": ["A", 2]}`,
			wantErr: `item 1 of "WP1" must be a string, got 2`,
		},
		{
			name:    "Item is null",
			content: `{"WP1": [null]}`,
			wantErr: `item 0 of "WP1" must be a string, got null`,
		},
		{
			name:    "Duplicate module",
			content: `{"WP1": ["A"], "WP1": ["B"]}`,
			wantErr: `duplicate module name "WP1"`,
		},
		{
			name:    "Trailing content",
			content: `{"WP1": []} {"WP2": []}`,
			wantErr: "unexpected content after top-level object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWBS(strings.NewReader(tt.content))
			require.Error(t, err)

			var inputErr *InputFormatError
			assert.ErrorAs(t, err, &inputErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeWBS_EmptyObject(t *testing.T) {
	wbs, err := DecodeWBS(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Empty(t, wbs)
	assert.Equal(t, 0, wbs.IssueCount())
}

func TestNewRunResult(t *testing.T) {
	wbs := WorkBreakdownStructure{
		{Name: "WP1", Issues: []string{"A", "B"}},
		{Name: "WP2"},
	}

	result := NewRunResult(wbs)

	require.Len(t, result.Modules, 2)
	require.Len(t, result.Issues, 2)
	for _, m := range result.Modules {
		assert.Equal(t, ModulePending, m.Status)
	}
	assert.Equal(t, IssueRecord{Title: "A", Module: "WP1", Status: IssuePending}, result.Issues[0])
	assert.Equal(t, IssueRecord{Title: "B", Module: "WP1", Status: IssuePending}, result.Issues[1])
}
