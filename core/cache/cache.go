package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache tags used across the app. Writers that invalidate a whole
// projection flush by tag instead of tracking individual keys.
const (
	TagProducts = "products"
	TagStock    = "stock"
)

// Cache is a simple thread-safe key-value store using sync.Map.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to a set of keys
	tagIndex sync.Map // map[string]*sync.Map
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix timestamp in nanoseconds; 0 means no expiration
}

// Set stores a value for a key with an optional TTL (in seconds) and optional tags. If ttl is 0, the value does not expire.
func (c *Cache) Set(key, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get retrieves a value for a key. Returns (value, true) if found and not expired, (nil, false) otherwise.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	if item, isItem := v.(cacheItem); isItem {
		if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
			c.m.Delete(key)
			return nil, false
		}
		return item.Value, true
	}
	return v, true
}

// GetOrDef retrieves a value for a key, falling back to the default when absent.
func (c *Cache) GetOrDef(key, defaultValue interface{}) interface{} {
	v, ok := c.Get(key)
	if ok {
		return v
	}
	return defaultValue
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
}

// DeleteMany removes multiple keys from the cache.
func (c *Cache) DeleteMany(keys ...interface{}) {
	for _, key := range keys {
		c.m.Delete(key)
	}
}

func makeCompositeKey(keys ...interface{}) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return strings.Join(parts, "|")
}

// SetN stores a value for a composite key with an optional TTL (in seconds) and optional tags.
func (c *Cache) SetN(keys []interface{}, value interface{}, ttl int64, tags []string) {
	c.Set(makeCompositeKey(keys...), value, ttl, tags)
}

// GetN retrieves a value for a composite key.
func (c *Cache) GetN(keys ...interface{}) (interface{}, bool) {
	return c.Get(makeCompositeKey(keys...))
}

func (c *Cache) DeleteN(keys ...interface{}) {
	c.Delete(makeCompositeKey(keys...))
}

// TagKey assigns one or more tags to a cache key.
func (c *Cache) TagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		val, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		km := val.(*sync.Map)
		km.Store(key, struct{}{})
	}
}

// UntagKey removes one or more tags from a cache key.
func (c *Cache) UntagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		if val, ok := c.tagIndex.Load(tag); ok {
			km := val.(*sync.Map)
			km.Delete(key)
		}
	}
}

// GetKeysByTag returns a slice of all keys assigned to a tag.
func (c *Cache) GetKeysByTag(tag string) []interface{} {
	var keys []interface{}
	if val, ok := c.tagIndex.Load(tag); ok {
		km := val.(*sync.Map)
		km.Range(func(key, _ interface{}) bool {
			keys = append(keys, key)
			return true
		})
	}
	return keys
}

// FlushTag deletes all cache entries assigned to a tag.
func (c *Cache) FlushTag(tag string) {
	if val, ok := c.tagIndex.Load(tag); ok {
		km := val.(*sync.Map)
		km.Range(func(key, _ interface{}) bool {
			c.Delete(key)
			km.Delete(key)
			return true
		})
		c.tagIndex.Delete(tag)
	}
}
