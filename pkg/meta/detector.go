package meta

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fwmeta/pkg/cache"
	"github.com/matzehuels/fwmeta/pkg/observability"
	"github.com/matzehuels/fwmeta/pkg/software"
)

const cacheKeyType = "detect"

// CachingDetector reuses detection results for boot files it has seen
// before, keyed by content hash. Only complete, error-free detections are
// stored, and every hit is decoded into a fresh record.
type CachingDetector struct {
	Detector software.Detector
	Cache    cache.Cache
	Keyer    cache.Keyer   // default: cache.NewDefaultKeyer()
	Name     string        // detector identity in cache keys
	TTL      time.Duration // default: cache.DefaultTTL
	Logger   *log.Logger   // optional
}

// Detect returns a cached result for data or runs the wrapped detector.
// Cache failures are logged and never fail detection.
func (d *CachingDetector) Detect(ctx context.Context, data []byte) (*software.Software, error) {
	key := d.keyer().DetectionKey(d.Name, cache.Hash(data))

	cached, ok, err := d.Cache.Get(ctx, key)
	if err != nil {
		d.logger().Warn("cache read failed", "err", err)
	}
	if ok {
		var sw software.Software
		if err := json.Unmarshal(cached, &sw); err == nil {
			observability.Cache().OnCacheHit(ctx, cacheKeyType)
			return &sw, nil
		}
		d.logger().Warn("discarding corrupt cache entry", "key", key)
		_ = d.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, cacheKeyType)

	sw, err := d.Detector.Detect(ctx, data)
	if err != nil || sw == nil {
		return sw, err
	}

	encoded, err := json.Marshal(sw)
	if err != nil {
		return sw, nil
	}
	if err := d.Cache.Set(ctx, key, encoded, d.ttl()); err != nil {
		d.logger().Warn("cache write failed", "err", err)
		return sw, nil
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(encoded))
	return sw, nil
}

func (d *CachingDetector) keyer() cache.Keyer {
	if d.Keyer == nil {
		return cache.NewDefaultKeyer()
	}
	return d.Keyer
}

func (d *CachingDetector) ttl() time.Duration {
	if d.TTL <= 0 {
		return cache.DefaultTTL
	}
	return d.TTL
}

func (d *CachingDetector) logger() *log.Logger {
	if d.Logger == nil {
		return discard
	}
	return d.Logger
}
