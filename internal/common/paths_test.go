package common

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "metrics/revenue/revenue.sql.j2", []byte("SELECT 1"), FilePermissionNormal))
	require.NoError(t, afero.WriteFile(fsys, "metrics/a/orders.sql.j2", []byte("SELECT 2"), FilePermissionNormal))
	require.NoError(t, afero.WriteFile(fsys, "metrics/b/orders.sql.j2", []byte("SELECT 3"), FilePermissionNormal))

	tests := []struct {
		name      string
		root      string
		file      string
		wantPath  string
		wantFound bool
	}{
		{
			name:      "nested match",
			root:      "metrics",
			file:      "revenue.sql.j2",
			wantPath:  filepath.Join("metrics", "revenue", "revenue.sql.j2"),
			wantFound: true,
		},
		{
			name:      "first match in lexical depth-first order",
			root:      "metrics",
			file:      "orders.sql.j2",
			wantPath:  filepath.Join("metrics", "a", "orders.sql.j2"),
			wantFound: true,
		},
		{
			name:      "no match",
			root:      "metrics",
			file:      "missing.sql.j2",
			wantFound: false,
		},
		{
			name:      "directory names do not match",
			root:      "metrics",
			file:      "revenue",
			wantFound: false,
		},
		{
			name:      "missing root",
			root:      "templates",
			file:      "revenue.sql.j2",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, found, err := FindFile(fsys, tt.root, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		elem      string
		want      string
		wantError bool
	}{
		{name: "plain file", base: "build", elem: "orders.sql", want: filepath.Join("build", "orders.sql")},
		{name: "nested file", base: "build", elem: "daily/orders.sql", want: filepath.Join("build", "daily", "orders.sql")},
		{name: "dot segments are cleaned", base: "build", elem: "./daily/../orders.sql", want: filepath.Join("build", "orders.sql")},
		{name: "traversal", base: "build", elem: "../orders.sql", wantError: true},
		{name: "absolute", base: "build", elem: "/tmp/orders.sql", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinPath(tt.base, tt.elem)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
