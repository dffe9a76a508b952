package cache

import (
	"testing"
	"time"
)

func TestNewCache(t *testing.T) {
	c := NewCache()
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
}

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	key := "test-set-get"
	c.Set(key, "val", 0, nil)
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("nonexistent-key-xyz")
	if ok {
		t.Error("Get missing key: want false")
	}
}

func TestGet_Expired(t *testing.T) {
	c := NewCache()
	key := "test-expired"
	c.Set(key, "v", 1, nil)
	c.m.Store(key, cacheItem{Value: "v", ExpiresAt: time.Now().Add(-time.Second).UnixNano()})
	if _, ok := c.Get(key); ok {
		t.Error("Get expired key: want false")
	}
}

func TestDelete(t *testing.T) {
	c := NewCache()
	key := "test-delete"
	c.Set(key, "x", 0, nil)
	c.Delete(key)
	if _, ok := c.Get(key); ok {
		t.Error("Delete: key should be gone")
	}
}

func TestGetOrDef(t *testing.T) {
	c := NewCache()
	key := "test-default"
	def := "default"
	if got := c.GetOrDef(key, def); got != def {
		t.Errorf("GetOrDef missing = %v, want %v", got, def)
	}
	c.Set(key, "stored", 0, nil)
	if got := c.GetOrDef(key, def); got != "stored" {
		t.Errorf("GetOrDef found = %v, want stored", got)
	}
}

func TestDeleteMany(t *testing.T) {
	c := NewCache()
	c.Set("dm1", 1, 0, nil)
	c.Set("dm2", 2, 0, nil)
	c.DeleteMany("dm1", "dm2")
	if _, ok := c.Get("dm1"); ok {
		t.Error("DeleteMany: dm1 should be gone")
	}
	if _, ok := c.Get("dm2"); ok {
		t.Error("DeleteMany: dm2 should be gone")
	}
}

func TestSetN_GetN_DeleteN(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"a", "b"}, "composite-val", 0, nil)
	got, ok := c.GetN("a", "b")
	if !ok || got != "composite-val" {
		t.Errorf("GetN = %v, %v; want composite-val, true", got, ok)
	}
	c.DeleteN("a", "b")
	if _, ok := c.GetN("a", "b"); ok {
		t.Error("DeleteN: key should be gone")
	}
}

func TestTagKey_GetKeysByTag_FlushTag(t *testing.T) {
	c := NewCache()
	key1, key2 := "tag-k1", "tag-k2"
	c.Set(key1, "v1", 0, []string{TagProducts})
	c.Set(key2, "v2", 0, []string{TagProducts})

	keys := c.GetKeysByTag(TagProducts)
	if len(keys) != 2 {
		t.Errorf("GetKeysByTag = %d keys, want 2", len(keys))
	}

	c.FlushTag(TagProducts)
	if _, ok := c.Get(key1); ok {
		t.Error("FlushTag: key1 should be gone")
	}
	if _, ok := c.Get(key2); ok {
		t.Error("FlushTag: key2 should be gone")
	}
	if keys := c.GetKeysByTag(TagProducts); len(keys) != 0 {
		t.Errorf("GetKeysByTag after flush = %d keys, want 0", len(keys))
	}
}

func TestFlushTag_LeavesOtherTags(t *testing.T) {
	c := NewCache()
	c.Set("p1", "v", 0, []string{TagProducts})
	c.Set("s1", "v", 0, []string{TagStock})
	c.FlushTag(TagProducts)
	if _, ok := c.Get("s1"); !ok {
		t.Error("FlushTag products should not touch stock entries")
	}
}

func TestUntagKey(t *testing.T) {
	c := NewCache()
	c.Set("u1", "v", 0, []string{"t"})
	c.UntagKey("u1", []string{"t"})
	c.FlushTag("t")
	if _, ok := c.Get("u1"); !ok {
		t.Error("untagged key should survive FlushTag")
	}
}
