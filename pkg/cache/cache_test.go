package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New[string, int](time.Minute)
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Fatal("缺失键不应命中")
	}
	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get got=%d ok=%v", v, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("Size got=%d", c.Size())
	}
}

func TestExpiry(t *testing.T) {
	c := New[string, int](time.Minute)
	defer c.Close()

	c.Set("short", 1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Fatal("过期键不应命中")
	}
}

func TestDelete(t *testing.T) {
	c := New[string, int](time.Minute)
	defer c.Close()

	c.Set("a", 1, 0)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("删除后不应命中")
	}
}
