// Package catalog reads and writes video library catalogues.
//
// # Overview
//
// A catalogue is a flat list of video files with their sizes. It is the
// input to every vidtree layout: each [Video] becomes one treemap item whose
// weight is the file size in megabytes.
//
// # File Format
//
// Catalogues are JSON or YAML documents with an optional root label and a
// "videos" array:
//
//	{
//	  "root": "/srv/media",
//	  "videos": [
//	    {"path": "movies/heat.mkv", "size_mb": 14210.5, "title": "Heat", "duration_sec": 10260},
//	    {"path": "shows/dark/s01e01.mkv", "size_mb": 2310, "tags": ["de"]}
//	  ]
//	}
//
// The format is chosen from the file extension (.json, .yaml, .yml). Paths use
// forward slashes; backslashes are normalized on read.
//
// # Validation
//
// [Read] and [ReadFile] reject entries with empty paths, parent ("..")
// segments, negative or non-finite sizes, and duplicate paths. Errors carry
// codes from pkg/errors.
//
// # Drill-down
//
// [Catalog.Filter] restricts a catalogue to one folder subtree and
// [Catalog.Children] lists the immediate entries below a folder. The group
// key functions ([ByParentDir], [ByTopDir], [ByExtension]) feed the
// hierarchical layout.
//
// # Scanning
//
// [Scan] builds a catalogue from a directory tree on disk.
package catalog
