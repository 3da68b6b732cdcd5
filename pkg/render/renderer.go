package render

import (
	"context"
	"time"

	"github.com/kmathys/orgcanvas/pkg/cache"
)

// Renderer renders DOT graphs through a cache. Output is a pure function of
// the DOT text, so cache entries never go stale; the TTL only bounds disk
// growth for the file-backed cache.
type Renderer struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRenderer creates a caching renderer. A nil cache disables caching.
func NewRenderer(c cache.Cache, ttl time.Duration) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Renderer{cache: c, ttl: ttl}
}

// SVG renders DOT to SVG, serving unchanged input from the cache.
func (r *Renderer) SVG(ctx context.Context, dot string) ([]byte, error) {
	return r.render(ctx, dot, "svg", SVG)
}

// PNG renders DOT to PNG, serving unchanged input from the cache.
func (r *Renderer) PNG(ctx context.Context, dot string) ([]byte, error) {
	return r.render(ctx, dot, "png", PNG)
}

func (r *Renderer) render(ctx context.Context, dot, format string, fn func(context.Context, string) ([]byte, error)) ([]byte, error) {
	key := cache.RenderKey(dot, format)
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	out, err := fn(ctx, dot)
	if err != nil {
		return nil, err
	}
	// A failed cache write only costs the next render.
	_ = r.cache.Set(ctx, key, out, r.ttl)
	return out, nil
}
