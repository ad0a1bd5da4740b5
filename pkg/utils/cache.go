package utils

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	globalCache *expirable.LRU[string, []byte]
	cacheOnce   sync.Mutex
)

// InitGlobalCache (re)creates the process-wide byte cache. Entries expire after ttl.
func InitGlobalCache(size int, ttl time.Duration) {
	cacheOnce.Lock()
	defer cacheOnce.Unlock()
	if size <= 0 {
		size = 256
	}
	globalCache = expirable.NewLRU[string, []byte](size, nil, ttl)
}

// GlobalCache returns the shared cache, creating a small default one when
// InitGlobalCache was never called.
func GlobalCache() *expirable.LRU[string, []byte] {
	cacheOnce.Lock()
	defer cacheOnce.Unlock()
	if globalCache == nil {
		globalCache = expirable.NewLRU[string, []byte](256, nil, 5*time.Minute)
	}
	return globalCache
}
