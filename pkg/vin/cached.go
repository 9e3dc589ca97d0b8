package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glassops/glassops-backend/pkg/logger"
	"github.com/glassops/glassops-backend/pkg/redis"
	"github.com/glassops/glassops-backend/pkg/types"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	VINKey(vin string) string
}

// CachedDecoder memoizes successful decodes in Redis. Cache failures degrade
// to a direct lookup.
type CachedDecoder struct {
	next  Decoder
	cache cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewCachedDecoder(next Decoder, cache cacheStore, ttl time.Duration, logg *logger.Logger) (*CachedDecoder, error) {
	if next == nil {
		return nil, fmt.Errorf("vin decoder required")
	}
	if cache == nil {
		return nil, fmt.Errorf("vin cache required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &CachedDecoder{next: next, cache: cache, ttl: ttl, logg: logg}, nil
}

func (d *CachedDecoder) Decode(ctx context.Context, raw string) (types.VehicleInfo, error) {
	vin := Normalize(raw)
	if !Valid(vin) {
		return types.VehicleInfo{}, ErrInvalidFormat
	}
	key := d.cache.VINKey(vin)

	cached, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var info types.VehicleInfo
		if jsonErr := json.Unmarshal([]byte(cached), &info); jsonErr == nil && !info.IsZero() {
			return info, nil
		}
	case !redis.IsNil(err):
		d.warn(ctx, vin, "vin cache read failed", err)
	}

	info, err := d.next.Decode(ctx, vin)
	if err != nil {
		return types.VehicleInfo{}, err
	}
	if payload, err := json.Marshal(info); err == nil {
		if err := d.cache.Set(ctx, key, string(payload), d.ttl); err != nil {
			d.warn(ctx, vin, "vin cache write failed", err)
		}
	}
	return info, nil
}

func (d *CachedDecoder) warn(ctx context.Context, vin, msg string, err error) {
	if d.logg == nil {
		return
	}
	ctx = d.logg.WithFields(ctx, map[string]any{"vin": vin, "error": err.Error()})
	d.logg.Warn(ctx, msg)
}
