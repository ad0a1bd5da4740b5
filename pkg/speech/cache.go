package speech

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedSynthesizer memoizes synthesized audio; the persona repeats itself a lot.
type CachedSynthesizer struct {
	inner Synthesizer
	cache *expirable.LRU[string, []byte]
}

func NewCachedSynthesizer(inner Synthesizer, cache *expirable.LRU[string, []byte]) *CachedSynthesizer {
	return &CachedSynthesizer{inner: inner, cache: cache}
}

func (c *CachedSynthesizer) Name() string { return c.inner.Name() }

// CacheKey identifies one rendering of text.
func CacheKey(provider string, text string, opts SynthOptions) string {
	sum := sha1.Sum([]byte(provider + "|" + opts.Style + "|" + opts.Voice + "|" + text))
	return "tts:" + hex.EncodeToString(sum[:])
}

func (c *CachedSynthesizer) Synthesize(ctx context.Context, text string, opts SynthOptions) ([]byte, error) {
	key := CacheKey(c.inner.Name(), text, opts)
	if audio, ok := c.cache.Get(key); ok {
		return audio, nil
	}
	audio, err := c.inner.Synthesize(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, audio)
	return audio, nil
}

// Lookup returns cached audio by key, used to serve <Play> URLs.
func (c *CachedSynthesizer) Lookup(key string) ([]byte, bool) {
	return c.cache.Get(key)
}
