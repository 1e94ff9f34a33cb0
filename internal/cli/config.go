package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vidtree/pkg/cache"
	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/pipeline"
)

// =============================================================================
// Config File
// =============================================================================

// Config is the on-disk configuration ($XDG_CONFIG_HOME/vidtree/config.toml).
//
//	[layout]
//	width = 1600
//	mode = "linear"
//	label_margin = 20
//
//	[cache]
//	backend = "redis"
//	ttl = "72h"
//	redis_addr = "cache.internal:6379"
//
//	[server]
//	addr = ":9000"
//
// Command-line flags override the file; the file overrides built-in defaults.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig sets layout defaults. Margins are pointers because zero is a
// meaningful value.
type LayoutConfig struct {
	Width       float64  `toml:"width"`
	Height      float64  `toml:"height"`
	Mode        string   `toml:"mode"`
	GroupBy     string   `toml:"group_by"`
	LabelMargin *float64 `toml:"label_margin"`
	Padding     *float64 `toml:"padding"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend         string `toml:"backend"` // file (default), redis, mongo, none
	TTL             string `toml:"ttl"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDB         string `toml:"mongo_db"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures "vidtree serve".
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Cache backend names.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// defaultConfigPath returns $XDG_CONFIG_HOME/vidtree/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// loadConfig reads the config file at path. A missing file yields the zero
// Config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// requireFile fails with INVALID_CONFIG when path does not exist.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	return nil
}

func (cfg Config) validate() error {
	switch cfg.Cache.Backend {
	case "", backendFile, backendRedis, backendMongo, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Cache.Backend)
	}
	if _, err := cfg.Cache.ttl(); err != nil {
		return err
	}
	if cfg.Layout.Mode != "" {
		if err := pipeline.ValidateMode(cfg.Layout.Mode); err != nil {
			return err
		}
	}
	return nil
}

func (c CacheConfig) ttl() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid cache ttl %q", c.TTL)
	}
	return d, nil
}

// =============================================================================
// Layout Flags
// =============================================================================

// addLayoutFlags registers the flags shared by every command that computes a
// layout.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "canvas width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "canvas height")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", opts.Mode, "weight mode: log (default), linear")
	cmd.Flags().BoolVarP(&opts.Hierarchical, "hierarchical", "g", opts.Hierarchical, "group videos into folder frames")
	cmd.Flags().StringVar(&opts.GroupBy, "group-by", opts.GroupBy, "grouping: parent (default), top, ext")
	cmd.Flags().Float64Var(&opts.LabelMargin, "label-margin", opts.LabelMargin, "height of the label strip above each group")
	cmd.Flags().Float64Var(&opts.Padding, "padding", opts.Padding, "inset on every side of a group frame")
	cmd.Flags().StringVar(&opts.Folder, "folder", opts.Folder, "only lay out videos below this folder")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	registerLayoutCompletions(cmd)
}

// newLayoutOptions returns options holding the built-in defaults.
func newLayoutOptions() pipeline.Options {
	opts := pipeline.Options{
		Mode:        pipeline.DefaultMode,
		Width:       pipeline.DefaultWidth,
		Height:      pipeline.DefaultHeight,
		GroupBy:     pipeline.DefaultGroupBy,
		LabelMargin: pipeline.DefaultLabelMargin,
		Padding:     pipeline.DefaultPadding,
	}
	return opts
}

// applyLayoutConfig fills opts from the config for every flag the user did
// not set explicitly.
func (c *CLI) applyLayoutConfig(cmd *cobra.Command, opts *pipeline.Options) {
	lc := c.Config.Layout
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && !f.Changed
	}
	if lc.Width > 0 && unset("width") {
		opts.Width = lc.Width
	}
	if lc.Height > 0 && unset("height") {
		opts.Height = lc.Height
	}
	if lc.Mode != "" && unset("mode") {
		opts.Mode = lc.Mode
	}
	if lc.GroupBy != "" && unset("group-by") {
		opts.GroupBy = lc.GroupBy
	}
	if lc.LabelMargin != nil && unset("label-margin") {
		opts.LabelMargin = *lc.LabelMargin
	}
	if lc.Padding != nil && unset("padding") {
		opts.Padding = *lc.Padding
	}
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the configured cache backend. File caches fall back to no
// caching when no cache directory can be determined.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	switch cc.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case backendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cc.MongoURI,
			Database:   cc.MongoDB,
			Collection: cc.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("file cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// cacheDir returns the file cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
