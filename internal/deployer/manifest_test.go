package deployer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "viewdeploy/pkg/errors"
)

func TestParseManifestKeepsOrder(t *testing.T) {
	entries, err := ParseManifest([]byte(`{"zeta": "view_z", "alpha": "view_a", "mid": "view_m"}`))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Template: "zeta", View: "view_z"},
		{Template: "alpha", View: "view_a"},
		{Template: "mid", View: "view_m"},
	}, entries)
}

func TestParseManifestRepeatedKey(t *testing.T) {
	entries, err := ParseManifest([]byte(`{"a": "first", "b": "view_b", "a": "last"}`))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Template: "a", View: "last"},
		{Template: "b", View: "view_b"},
	}, entries)
}

func TestParseManifestEmpty(t *testing.T) {
	entries, err := ParseManifest([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseManifestInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `["a", "b"]`},
		{"non string value", `{"a": 1}`},
		{"truncated", `{"a": "view_a"`},
		{"trailing data", `{"a": "view_a"} {}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeManifestInvalid, apperrors.GetErrorCode(err))
		})
	}
}
