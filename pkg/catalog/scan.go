package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file extensions [Scan] treats as videos.
var DefaultExtensions = []string{
	"avi", "flv", "m2ts", "m4v", "mkv", "mov", "mp4", "mpeg", "mpg", "ts", "webm", "wmv",
}

const bytesPerMB = 1 << 20

// Scan walks root and returns a catalogue of every regular file whose
// extension is in exts (case-insensitive, without dots). A nil exts uses
// [DefaultExtensions]. Paths are relative to root with forward slashes, in
// lexical walk order. Unreadable subdirectories are skipped.
func Scan(ctx context.Context, root string, exts []string) (*Catalog, error) {
	if exts == nil {
		exts = DefaultExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	c := &Catalog{Root: abs, Videos: []Video{}}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			if d != nil && d.IsDir() && p != abs {
				return fs.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
		if !want[ext] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		name := d.Name()
		c.Videos = append(c.Videos, Video{
			Path:   filepath.ToSlash(rel),
			SizeMB: float64(info.Size()) / bytesPerMB,
			Title:  strings.TrimSuffix(name, filepath.Ext(name)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return c, nil
}
