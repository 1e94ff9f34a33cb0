package catalog

import (
	"path"
	"sort"
	"strings"

	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// Metadata keys set on treemap items by [Catalog.Items].
const (
	MetaTitle    = "title"
	MetaDuration = "duration_sec"
	MetaTags     = "tags"
)

// Video is one catalogue entry.
type Video struct {
	Path     string   `json:"path" yaml:"path"`
	SizeMB   float64  `json:"size_mb" yaml:"size_mb"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Duration float64  `json:"duration_sec,omitempty" yaml:"duration_sec,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Catalog is a video library snapshot.
type Catalog struct {
	Root   string  `json:"root,omitempty" yaml:"root,omitempty"`
	Videos []Video `json:"videos" yaml:"videos"`
}

// Folder aggregates the videos that share a parent directory.
type Folder struct {
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
	Count  int     `json:"count"`
}

// Entry is one child of a folder: either a subfolder with its aggregate size
// or a single video.
type Entry struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
	Count  int     `json:"count"`
	Dir    bool    `json:"dir"`
}

// Validate checks every entry and rejects paths that are equal after
// [Clean].
func (c *Catalog) Validate() error {
	seen := make(map[string]int, len(c.Videos))
	for i, v := range c.Videos {
		if err := errors.ValidateVideoPath(v.Path); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "video %d", i)
		}
		if err := errors.ValidateSize(v.Path, v.SizeMB); err != nil {
			return err
		}
		p := Clean(v.Path)
		if j, ok := seen[p]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate path %q (videos %d and %d)", v.Path, j, i)
		}
		seen[p] = i
	}
	return nil
}

// normalize cleans the paths in place so that key functions and prefix
// filters can rely on forward slashes and no redundant segments.
func (c *Catalog) normalize() {
	for i := range c.Videos {
		c.Videos[i].Path = Clean(c.Videos[i].Path)
	}
}

// Clean normalizes a catalogue path: backslashes become forward slashes and
// redundant separators and "." segments are removed.
func Clean(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// TotalMB returns the combined size of all videos.
func (c *Catalog) TotalMB() float64 {
	var total float64
	for _, v := range c.Videos {
		total += v.SizeMB
	}
	return total
}

// Items converts the videos to treemap items in catalogue order.
func (c *Catalog) Items() []treemap.Item {
	items := make([]treemap.Item, len(c.Videos))
	for i, v := range c.Videos {
		items[i] = treemap.Item{ID: v.Path, Weight: v.SizeMB, Meta: v.meta()}
	}
	return items
}

func (v Video) meta() map[string]any {
	if v.Title == "" && v.Duration == 0 && len(v.Tags) == 0 {
		return nil
	}
	m := make(map[string]any, 3)
	if v.Title != "" {
		m[MetaTitle] = v.Title
	}
	if v.Duration != 0 {
		m[MetaDuration] = v.Duration
	}
	if len(v.Tags) > 0 {
		m[MetaTags] = v.Tags
	}
	return m
}

// Filter returns a catalogue holding only the videos below folder. An empty
// folder (or ".") returns a copy of the whole catalogue.
func (c *Catalog) Filter(folder string) *Catalog {
	prefix := folderPrefix(folder)
	out := &Catalog{Root: c.Root, Videos: make([]Video, 0, len(c.Videos))}
	for _, v := range c.Videos {
		if prefix == "" || strings.HasPrefix(v.Path, prefix) {
			out.Videos = append(out.Videos, v)
		}
	}
	return out
}

// Folders lists the distinct parent directories with their aggregate size,
// sorted by path.
func (c *Catalog) Folders() []Folder {
	index := make(map[string]int)
	var folders []Folder
	for _, v := range c.Videos {
		dir := parentDir(v.Path)
		i, ok := index[dir]
		if !ok {
			i = len(folders)
			index[dir] = i
			folders = append(folders, Folder{Path: dir})
		}
		folders[i].SizeMB += v.SizeMB
		folders[i].Count++
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	return folders
}

// Children lists the entries directly below folder: one [Entry] per
// subfolder (aggregated over its whole subtree) and one per video stored in
// folder itself. Entries keep the order in which they first appear.
func (c *Catalog) Children(folder string) []Entry {
	prefix := folderPrefix(folder)
	index := make(map[string]int)
	var entries []Entry
	for _, v := range c.Videos {
		if !strings.HasPrefix(v.Path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(v.Path, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if !isDir {
			entries = append(entries, Entry{Name: name, Path: v.Path, SizeMB: v.SizeMB, Count: 1})
			continue
		}
		dir := prefix + name
		if name == "" {
			// absolute path below the catalogue root
			name, dir = "/", "/"
		}
		i, ok := index[name]
		if !ok {
			i = len(entries)
			index[name] = i
			entries = append(entries, Entry{Name: name, Path: dir, Dir: true})
		}
		entries[i].SizeMB += v.SizeMB
		entries[i].Count++
	}
	return entries
}

// folderPrefix turns a folder into a match prefix ending in "/". The
// catalogue root ("" or ".") matches everything and yields "".
func folderPrefix(folder string) string {
	f := Clean(folder)
	if f == "" || f == "." {
		return ""
	}
	return strings.TrimSuffix(f, "/") + "/"
}

// Parent returns the folder above folder, or "" at the root.
func Parent(folder string) string {
	f := Clean(folder)
	if f == "" || f == "." || f == "/" {
		return ""
	}
	dir := path.Dir(f)
	if dir == "." {
		return ""
	}
	return dir
}
