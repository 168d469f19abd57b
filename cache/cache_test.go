package cache

import (
	"fmt"
	"testing"

	"github.com/use-agent/mapscout/models"
)

func TestKey(t *testing.T) {
	if Key("coffee shops", 20) != Key("coffee shops", 20) {
		t.Error("identical inputs produced different keys")
	}
	if Key("coffee shops", 20) == Key("coffee shops", 30) {
		t.Error("different limits produced the same key")
	}
	if Key("coffee shops", 20) == Key("bars", 20) {
		t.Error("different queries produced the same key")
	}
}

func TestCache_GetSet(t *testing.T) {
	c := New(10)
	key := Key("coffee shops", 0)

	if _, hit := c.Get(key, 60_000); hit {
		t.Error("empty cache reported a hit")
	}

	c.Set(key, models.QueryResult{Query: "coffee shops"})

	result, hit := c.Get(key, 60_000)
	if !hit {
		t.Fatal("freshly set entry was a miss")
	}
	if result.Query != "coffee shops" {
		t.Errorf("result.Query = %q, want coffee shops", result.Query)
	}
}

func TestCache_ZeroMaxAgeSkipsLookup(t *testing.T) {
	c := New(10)
	key := Key("coffee shops", 0)
	c.Set(key, models.QueryResult{Query: "coffee shops"})

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 should bypass the cache")
	}
	if _, hit := c.Get(key, -1); hit {
		t.Error("negative maxAge should bypass the cache")
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.Set(Key(fmt.Sprintf("query-%d", i), 0), models.QueryResult{})
	}

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()

	if size > 3 {
		t.Errorf("cache size = %d, want at most 3", size)
	}
}
