package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vidtree/pkg/observability"
)

// installDebugHooks routes pipeline and cache events to logger.
func installDebugHooks(logger *log.Logger) {
	h := debugHooks{logger: logger.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

// debugHooks logs every pipeline and cache event at debug level.
type debugHooks struct {
	logger *log.Logger
}

func (h debugHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h debugHooks) OnLoadComplete(_ context.Context, source string, videos int, d time.Duration, err error) {
	h.logger.Debug("load done", "source", source, "videos", videos, "duration", d, "error", err)
}

func (h debugHooks) OnLayoutStart(_ context.Context, kind string, items int) {
	h.logger.Debug("layout start", "kind", kind, "items", items)
}

func (h debugHooks) OnLayoutComplete(_ context.Context, kind string, blocks int, d time.Duration, err error) {
	h.logger.Debug("layout done", "kind", kind, "blocks", blocks, "duration", d, "error", err)
}

func (h debugHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h debugHooks) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "bytes", size, "duration", d, "error", err)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h debugHooks) OnCacheError(_ context.Context, keyType, op string, err error) {
	h.logger.Debug("cache error", "type", keyType, "op", op, "error", err)
}
