package cipher

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"time"
)

// Extracted function pairs are cached by script content so every format in a
// resolution batch (and any later batch served the same player asset) shares
// one function pair.
var (
	extractCache   = make(map[string]extractCacheEntry)
	extractCacheMu sync.Mutex
)

type extractCacheEntry struct {
	fns   Functions
	expAt time.Time
}

const extractTTL = 10 * time.Minute

func cacheKey(body string) string {
	h := sha1.Sum([]byte(body))
	return hex.EncodeToString(h[:])
}

// ExtractFunctionsCached returns the function pair for the given script,
// extracting on first sight and serving the memoized pair afterwards.
func ExtractFunctionsCached(body string) Functions {
	key := cacheKey(body)

	extractCacheMu.Lock()
	entry, ok := extractCache[key]
	if ok && time.Now().Before(entry.expAt) {
		extractCacheMu.Unlock()
		return entry.fns
	}
	extractCacheMu.Unlock()

	fns := ExtractFunctions(body)

	extractCacheMu.Lock()
	extractCache[key] = extractCacheEntry{fns: fns, expAt: time.Now().Add(extractTTL)}
	extractCacheMu.Unlock()

	return fns
}
