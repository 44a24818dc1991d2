package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator("/non/existent/path")
	require.NoError(t, err)
	assert.Equal(t, "/non/existent/path", v.DataDirectory())
}

func TestPathValidator_Resolve(t *testing.T) {
	dataDir := t.TempDir()
	v, err := NewPathValidator(dataDir)
	require.NoError(t, err)

	tests := []struct {
		name      string
		path      string
		want      string
		wantError bool
	}{
		{name: "relative file", path: "forms/w9.pdf", want: filepath.Join(dataDir, "forms", "w9.pdf")},
		{name: "absolute inside", path: filepath.Join(dataDir, "w9.pdf"), want: filepath.Join(dataDir, "w9.pdf")},
		{name: "the directory itself", path: dataDir, want: dataDir},
		{name: "null bytes stripped", path: "w9\x00.pdf", want: filepath.Join(dataDir, "w9.pdf")},
		{name: "traversal", path: "../outside.pdf", wantError: true},
		{name: "absolute outside", path: "/etc/passwd", wantError: true},
		{name: "empty", path: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Resolve(tt.path)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	dataDir := t.TempDir()
	outside := t.TempDir()

	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF-"), 0o600))

	link := filepath.Join(dataDir, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewPathValidator(dataDir)
	require.NoError(t, err)

	within, err := v.IsWithinDataDirectory(link)
	require.NoError(t, err)
	assert.False(t, within)
}
