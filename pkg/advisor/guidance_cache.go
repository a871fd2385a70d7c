package advisor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"
)

const (
	defaultGuidanceCacheEntries = 1000
	defaultGuidanceCacheTTL     = time.Hour
)

// GuidanceCache memoizes BuildInvestmentGuidance per profile. Guidance is a
// pure function of the profile, so a fingerprint of the profile is a
// sufficient key.
type GuidanceCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewGuidanceCache holds up to maxEntries guidance values for ttl each.
// Non-positive arguments use the defaults.
func NewGuidanceCache(maxEntries int64, ttl time.Duration) (*GuidanceCache, error) {
	if maxEntries <= 0 {
		maxEntries = defaultGuidanceCacheEntries
	}
	if ttl <= 0 {
		ttl = defaultGuidanceCacheTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		// Cost counts entries, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, WrapError(ErrCodeInternal, "create guidance cache", err)
	}
	return &GuidanceCache{cache: cache, ttl: ttl}, nil
}

// Get returns cached guidance or builds and stores it.
func (c *GuidanceCache) Get(p *FinancialProfile) *InvestmentGuidance {
	key, ok := profileFingerprint(p)
	if !ok {
		return BuildInvestmentGuidance(p)
	}
	if v, found := c.cache.Get(key); found {
		if g, ok := v.(*InvestmentGuidance); ok {
			return g
		}
	}
	g := BuildInvestmentGuidance(p)
	c.cache.SetWithTTL(key, g, 1, c.ttl)
	return g
}

// Wait blocks until pending writes are visible to Get.
func (c *GuidanceCache) Wait() { c.cache.Wait() }

func (c *GuidanceCache) Close() { c.cache.Close() }

func profileFingerprint(p *FinancialProfile) (string, bool) {
	if p == nil {
		return "nil", true
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), true
}
