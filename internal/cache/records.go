// Package cache keeps recently triaged securities in memory so repeated
// submissions of the same ISIN do not re-drive a browser against the
// registries.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/veritriage/veritriage/internal/model"
)

// Records is a TTL cache of decision records keyed by security and
// verification mode.
type Records struct {
	cache *gocache.Cache
}

// NewRecords creates a record cache. A non-positive TTL disables caching.
func NewRecords(ttl time.Duration) *Records {
	if ttl <= 0 {
		return &Records{}
	}
	return &Records{cache: gocache.New(ttl, 2*ttl)}
}

// Key derives the cache key for a security. The expected share count is part
// of the key: a changed system figure must force a fresh comparison.
func Key(isin string, t model.VerificationType, expectedShares int64) string {
	raw := fmt.Sprintf("%s:%s:%d", isin, t, expectedShares)
	sum := sha256.Sum256([]byte(raw))
	return "veritriage:v1:" + hex.EncodeToString(sum[:])
}

// Get returns a cached record, if any.
func (r *Records) Get(key string) (*model.DecisionRecord, bool) {
	if r.cache == nil {
		return nil, false
	}
	if v, found := r.cache.Get(key); found {
		return v.(*model.DecisionRecord), true
	}
	return nil, false
}

// Set stores a record under the default TTL.
func (r *Records) Set(key string, rec *model.DecisionRecord) {
	if r.cache == nil {
		return
	}
	r.cache.Set(key, rec, gocache.DefaultExpiration)
}
