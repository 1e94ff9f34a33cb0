package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vidtree/pkg/errors"
)

const sampleJSON = `{
  "root": "/srv/media",
  "videos": [
    {"path": "movies/heat.mkv", "size_mb": 14000, "title": "Heat"},
    {"path": "shows\\dark\\s01e01.mkv", "size_mb": 2300, "tags": ["de"]}
  ]
}`

const sampleYAML = `root: /srv/media
videos:
  - path: movies/heat.mkv
    size_mb: 14000
    title: Heat
  - path: shows/dark//s01e01.mkv
    size_mb: 2300
    tags: [de]
`

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json", sampleJSON, FormatJSON},
		{"yaml", sampleYAML, FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Read(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, "/srv/media", c.Root)
			require.Len(t, c.Videos, 2)
			assert.Equal(t, Video{Path: "movies/heat.mkv", SizeMB: 14000, Title: "Heat"}, c.Videos[0])
			assert.Equal(t, "shows/dark/s01e01.mkv", c.Videos[1].Path)
			assert.Equal(t, []string{"de"}, c.Videos[1].Tags)
		})
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		code   errors.Code
	}{
		{"malformed json", `{"videos": [`, FormatJSON, errors.ErrCodeInvalidInput},
		{"malformed yaml", "videos: [", FormatYAML, errors.ErrCodeInvalidInput},
		{"negative size", `{"videos": [{"path": "a.mkv", "size_mb": -1}]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"traversal", `{"videos": [{"path": "../a.mkv", "size_mb": 1}]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"unknown format", `{}`, Format("xml"), errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestReadEmpty(t *testing.T) {
	c, err := Read(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.NotNil(t, c.Videos)
	assert.Empty(t, c.Videos)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"lib.json", FormatJSON, false},
		{"lib.YAML", FormatYAML, false},
		{"dir/lib.yml", FormatYAML, false},
		{"lib.toml", "", true},
		{"lib", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestWriteRoundTrip(t *testing.T) {
	for _, name := range []string{"lib.json", "lib.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := library()
			require.NoError(t, WriteFile(want, path))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestWriteJSONIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&Catalog{Videos: []Video{{Path: "a.mkv", SizeMB: 1}}}, &buf, FormatJSON))
	assert.Contains(t, buf.String(), "\n  \"videos\": [")
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	files := map[string]int{
		"movies/heat.mkv":     3 << 20,
		"movies/poster.jpg":   1024,
		"shows/dark/e01.MP4":  1 << 20,
		"shows/dark/notes.md": 10,
	}
	for name, size := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	}

	c, err := Scan(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, c.Videos, 2)
	assert.Equal(t, Video{Path: "movies/heat.mkv", SizeMB: 3, Title: "heat"}, c.Videos[0])
	assert.Equal(t, Video{Path: "shows/dark/e01.MP4", SizeMB: 1, Title: "e01"}, c.Videos[1])
	assert.True(t, filepath.IsAbs(c.Root))
	require.NoError(t, c.Validate())

	only, err := Scan(context.Background(), root, []string{".jpg"})
	require.NoError(t, err)
	require.Len(t, only.Videos, 1)
	assert.Equal(t, "movies/poster.jpg", only.Videos[0].Path)
}

func TestScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, t.TempDir(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
