package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestInMemory(t *testing.T) {
	c := NewInMemory()

	if _, ok, _ := c.Get("lutoma"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set("lutoma", 7); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	streak, ok, err := c.Get("lutoma")
	if err != nil || !ok || streak != 7 {
		t.Fatalf("Get = (%d, %v, %v), want (7, true, nil)", streak, ok, err)
	}

	if err := c.Invalidate("lutoma"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, ok, _ := c.Get("lutoma"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestInMemoryInvalidateUnknownUser(t *testing.T) {
	c := NewInMemory()

	if err := c.Invalidate("nobody"); err != nil {
		t.Fatalf("Invalidate of unknown user failed: %v", err)
	}
}

func TestInMemoryConcurrentAccess(t *testing.T) {
	c := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", n%5)
			for j := 0; j < 100; j++ {
				c.Set(user, j)
				c.Get(user)
				c.Invalidate(user)
			}
		}(i)
	}
	wg.Wait()
}
