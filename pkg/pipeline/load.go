package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/observability"
)

// Load reads and validates a catalogue file.
func Load(ctx context.Context, path string) (*catalog.Catalog, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()

	cat, err := catalog.ReadFile(path)

	videos := 0
	if cat != nil {
		videos = len(cat.Videos)
	}
	hooks.OnLoadComplete(ctx, path, videos, time.Since(start), err)
	return cat, err
}
