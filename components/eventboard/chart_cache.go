package eventboard

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RenderCache memoizes rendered chart HTML so repeated page loads are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	store *gocache.Cache
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	if ttl <= 0 {
		return &ChartCache{}
	}
	return &ChartCache{store: gocache.New(ttl, 2*ttl)}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c != nil && c.store != nil {
		if cached, ok := c.store.Get(key); ok {
			if html, ok := cached.(string); ok {
				return html, nil
			}
		}
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	if c != nil && c.store != nil {
		c.store.Set(key, html, gocache.DefaultExpiration)
	}
	return html, nil
}

// Len reports the number of cached charts.
func (c *ChartCache) Len() int {
	if c == nil || c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}

// cardsHash returns a deterministic key for the chart inputs.
func cardsHash(theme string, cards []Card) string {
	if len(cards) == 0 {
		return theme + ":empty"
	}
	h := sha1.New()
	h.Write([]byte(theme))
	for _, card := range cards {
		h.Write([]byte{0})
		h.Write([]byte(card.EventName))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(card.Count)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
