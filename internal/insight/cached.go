package insight

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tkordic/anamnesis/internal/cache"
)

// CachedClassifier caches classifications by study digest so repeated
// analyses of the same study (batch reruns, retry after a fatal stage)
// skip the vision call. Hint-only requests carry no digest and bypass
// the cache.
type CachedClassifier struct {
	inner Classifier
	store cache.Cache
	ttl   time.Duration
}

// NewCachedClassifier wraps a classifier with a cache layer
func NewCachedClassifier(inner Classifier, store cache.Cache, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{inner: inner, store: store, ttl: ttl}
}

// Name returns the wrapped provider's name
func (c *CachedClassifier) Name() string { return c.inner.Name() }

// IsAvailable defers to the wrapped provider
func (c *CachedClassifier) IsAvailable(ctx context.Context) bool {
	return c.inner.IsAvailable(ctx)
}

// Classify answers from cache when the study was seen before
func (c *CachedClassifier) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	if req.Study == nil || req.Study.Digest == "" {
		return c.inner.Classify(ctx, req)
	}

	key := cache.Key("classify", c.inner.Name(), req.Study.Digest, req.AnatomyHint)
	if data, found := c.store.Get(key); found {
		var cached Classification
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		// Unreadable entry; drop it and classify fresh.
		_ = c.store.Delete(key)
	}

	classification, err := c.inner.Classify(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(classification); err == nil {
		_ = c.store.Set(key, data, c.ttl)
	}
	return classification, nil
}
