package redis

import (
	"context"
	"time"

	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
)

// DatasetCache keeps validated datasets so re-uploading the same bytes under
// the same sampling options reuses the same sample.
type DatasetCache struct {
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewDatasetCache builds a DatasetCache on top of cache.
func NewDatasetCache(cache Cache, ttl time.Duration, log logging.Logger) *DatasetCache {
	return &DatasetCache{cache: cache, ttl: ttl, logger: log}
}

// DatasetKey is the cache key (before prefixing) of a dataset key.
func DatasetKey(key string) string {
	return "dataset:" + key
}

// LoadOrValidate returns the dataset cached under key, running validate on a
// miss.  Concurrent misses on one key share a single validation.  The bool
// reports whether the dataset came from the cache.
func (d *DatasetCache) LoadOrValidate(ctx context.Context, key string, validate func(ctx context.Context) (*personnel.CleanDataset, error)) (*personnel.CleanDataset, bool, error) {
	var (
		fresh  *personnel.CleanDataset
		cached personnel.CleanDataset
	)
	err := d.cache.GetOrSet(ctx, DatasetKey(key), &cached, d.ttl, func(ctx context.Context) (interface{}, error) {
		ds, err := validate(ctx)
		if err != nil {
			return nil, err
		}
		fresh = ds
		return ds, nil
	})
	if err != nil {
		return nil, false, err
	}
	if fresh != nil {
		return fresh, false, nil
	}
	d.logger.Debug("dataset cache hit", logging.String("key", key), logging.Int("records", len(cached.Records)))
	return &cached, true, nil
}

//Personal.AI order the ending
