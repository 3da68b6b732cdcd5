// Package config loads engine tunables from a TOML file.
//
// Every knob has a default, so the file is optional and may be partial: a
// host that only wants a stiffer rubber band ships two lines of TOML and
// inherits the rest. The same file drives the CLI, the TUI demo, and the
// HTTP shell.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kmathys/orgcanvas/pkg/apperr"
	"github.com/kmathys/orgcanvas/pkg/cache"
	"github.com/kmathys/orgcanvas/pkg/drag"
	"github.com/kmathys/orgcanvas/pkg/layout"
	"github.com/kmathys/orgcanvas/pkg/store"
	"github.com/kmathys/orgcanvas/pkg/viewport"
)

// Config is the full tunables file.
type Config struct {
	Drag     Drag     `toml:"drag"`
	Layout   Layout   `toml:"layout"`
	Viewport Viewport `toml:"viewport"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
	Cache    Cache    `toml:"cache"`
}

// Drag mirrors the gesture tunables.
type Drag struct {
	SnapOutThreshold float64 `toml:"snap_out_threshold"`
	RubberBandFactor float64 `toml:"rubber_band_factor"`
	RootBandBottom   float64 `toml:"root_band_bottom"`
	RootY            float64 `toml:"root_y"`
	LevelSeparation  float64 `toml:"level_separation"`
	SiblingSpacing   float64 `toml:"sibling_spacing"`
}

// Layout mirrors the layout tunables.
type Layout struct {
	RootY           float64 `toml:"root_y"`
	LevelSeparation float64 `toml:"level_separation"`
	GridSpacingX    float64 `toml:"grid_spacing_x"`
	GridSpacingY    float64 `toml:"grid_spacing_y"`
	GridTopMargin   float64 `toml:"grid_top_margin"`
}

// Viewport mirrors the camera tunables.
type Viewport struct {
	MinScale         float64 `toml:"min_scale"`
	MaxScale         float64 `toml:"max_scale"`
	RootY            float64 `toml:"root_y"`
	RootScreenOffset float64 `toml:"root_screen_offset"`
}

// Store selects and configures the persistence backend.
type Store struct {
	// Backend is one of "file", "memory", "redis", "mongo".
	Backend string `toml:"backend"`

	// Dir is the chart directory for the file backend. Empty means the
	// per-user default.
	Dir string `toml:"dir"`

	Redis RedisStore `toml:"redis"`
	Mongo MongoStore `toml:"mongo"`
}

// RedisStore holds redis backend settings.
type RedisStore struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoStore holds mongodb backend settings.
type MongoStore struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Server holds HTTP shell settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Cache controls the rendered-artifact cache.
type Cache struct {
	// Backend is one of "file", "memory", "off".
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend. Empty means the
	// per-user default.
	Dir string `toml:"dir"`

	// TTLHours bounds how long file entries live. Zero means forever.
	TTLHours int `toml:"ttl_hours"`
}

// Default returns a config populated with every package's defaults.
func Default() Config {
	d := drag.DefaultConfig()
	l := layout.DefaultConfig()
	v := viewport.DefaultConfig()
	return Config{
		Drag: Drag{
			SnapOutThreshold: d.SnapOutThreshold,
			RubberBandFactor: d.RubberBandFactor,
			RootBandBottom:   d.RootBandBottom,
			RootY:            d.RootY,
			LevelSeparation:  d.LevelSeparation,
			SiblingSpacing:   d.SiblingSpacing,
		},
		Layout: Layout{
			RootY:           l.RootY,
			LevelSeparation: l.LevelSeparation,
			GridSpacingX:    l.GridSpacingX,
			GridSpacingY:    l.GridSpacingY,
			GridTopMargin:   l.GridTopMargin,
		},
		Viewport: Viewport{
			MinScale:         v.MinScale,
			MaxScale:         v.MaxScale,
			RootY:            v.RootY,
			RootScreenOffset: v.RootScreenOffset,
		},
		Store:  Store{Backend: "file"},
		Server: Server{Addr: ":8080"},
		Cache:  Cache{Backend: "file", TTLHours: 24 * 30},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values. An empty path returns the defaults unchanged; a
// missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// DragConfig converts to the drag engine's config type.
func (c Config) DragConfig() drag.Config {
	return drag.Config{
		SnapOutThreshold: c.Drag.SnapOutThreshold,
		RubberBandFactor: c.Drag.RubberBandFactor,
		RootBandBottom:   c.Drag.RootBandBottom,
		RootY:            c.Drag.RootY,
		LevelSeparation:  c.Drag.LevelSeparation,
		SiblingSpacing:   c.Drag.SiblingSpacing,
	}
}

// LayoutConfig converts to the layout package's config type.
func (c Config) LayoutConfig() layout.Config {
	return layout.Config{
		RootY:           c.Layout.RootY,
		LevelSeparation: c.Layout.LevelSeparation,
		GridSpacingX:    c.Layout.GridSpacingX,
		GridSpacingY:    c.Layout.GridSpacingY,
		GridTopMargin:   c.Layout.GridTopMargin,
	}
}

// ViewportConfig converts to the viewport package's config type.
func (c Config) ViewportConfig() viewport.Config {
	return viewport.Config{
		MinScale:         c.Viewport.MinScale,
		MaxScale:         c.Viewport.MaxScale,
		RootY:            c.Viewport.RootY,
		RootScreenOffset: c.Viewport.RootScreenOffset,
	}
}

// OpenStore builds the configured persistence backend, wrapped with
// observability instrumentation.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case "", "file":
		s, err := store.NewFileStore(c.Store.Dir)
		if err != nil {
			return nil, err
		}
		return store.Instrumented(s, "file"), nil
	case "memory":
		return store.Instrumented(store.NewMemoryStore(), "memory"), nil
	case "redis":
		s, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return store.Instrumented(s, "redis"), nil
	case "mongo":
		s, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Store.Mongo.URI,
			Database:   c.Store.Mongo.Database,
			Collection: c.Store.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return store.Instrumented(s, "mongo"), nil
	default:
		return nil, apperr.New(apperr.ErrCodeUnsupported, "unknown store backend %q", c.Store.Backend)
	}
}

// CacheTTL returns the configured entry lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// OpenCache builds the configured render cache. The "off" backend returns a
// cache that never stores, so callers need no nil checks.
func (c Config) OpenCache() (cache.Cache, error) {
	switch c.Cache.Backend {
	case "", "file":
		dir := c.Cache.Dir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = filepath.Join(base, "orgcanvas", "render")
		}
		return cache.NewFileCache(dir)
	case "memory":
		return cache.NewMemoryCache(), nil
	case "off":
		return cache.NewNullCache(), nil
	default:
		return nil, apperr.New(apperr.ErrCodeUnsupported, "unknown cache backend %q", c.Cache.Backend)
	}
}
