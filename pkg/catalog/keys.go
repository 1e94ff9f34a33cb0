package catalog

import (
	"path"
	"strings"

	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// Group key names accepted by [KeyFuncByName].
const (
	GroupParent    = "parent"
	GroupTop       = "top"
	GroupExtension = "ext"
)

// GroupNames lists the supported grouping names.
var GroupNames = []string{GroupParent, GroupTop, GroupExtension}

// noExtension is the group key for files without an extension.
const noExtension = "(none)"

// ByParentDir groups items by the directory that contains them. Files at the
// catalogue root share the key ".".
func ByParentDir(it treemap.Item) string {
	return parentDir(it.ID)
}

// ByTopDir groups items by their first path segment. Files at the catalogue
// root share the key ".".
func ByTopDir(it treemap.Item) string {
	p := strings.TrimPrefix(Clean(it.ID), "/")
	top, _, ok := strings.Cut(p, "/")
	if !ok {
		return "."
	}
	return top
}

// ByExtension groups items by lower-cased file extension without the dot.
func ByExtension(it treemap.Item) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(Clean(it.ID)), "."))
	if ext == "" {
		return noExtension
	}
	return ext
}

// KeyFuncByName resolves a grouping name. The empty name selects
// [ByParentDir].
func KeyFuncByName(name string) (treemap.KeyFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", GroupParent:
		return ByParentDir, nil
	case GroupTop:
		return ByTopDir, nil
	case GroupExtension, "extension":
		return ByExtension, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidGroupBy,
			"unknown group-by %q (want one of: %s)", name, strings.Join(GroupNames, ", "))
	}
}

func parentDir(p string) string {
	return path.Dir(Clean(p))
}
