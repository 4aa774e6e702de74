package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/huangsam/codescore/schema"
)

// CacheKey derives the result cache key from the exact source text.
func CacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// lookupOrCompute serves a cached result or computes and stores a new one.
// The returned pointer is shared with the cache and must not be mutated.
func (a *Analyzer) lookupOrCompute(ctx context.Context, key, source string) (*schema.AnalysisResult, error) {
	if cached, ok := a.cache.Get(key); ok {
		return cached, nil
	}
	if !a.dedupe {
		return a.computeAndStore(ctx, key, source)
	}

	// The shared computation outlives any single caller; each caller stops
	// waiting when its own context ends. Tool runs stay bounded by the tool timeout.
	shared := context.WithoutCancel(ctx)
	ch := a.flight.DoChan(key, func() (any, error) {
		return a.computeAndStore(shared, key, source)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*schema.AnalysisResult), nil
	}
}

// computeAndStore computes the result and stores it in cache.
// A result computed under a cancelled context is never stored.
func (a *Analyzer) computeAndStore(ctx context.Context, key, source string) (*schema.AnalysisResult, error) {
	result, err := a.compute(ctx, source)
	if err != nil {
		return nil, err
	}
	a.cache.SetWithTTL(key, result, a.ttl)
	return result, nil
}
