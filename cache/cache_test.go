package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := NewCache[string, int](time.Minute)

	value := 42
	c.Set("answer", &value)

	got := c.Get("answer")
	require.NotNil(t, got)
	assert.Equal(t, 42, *got)
}

func TestCache_MissingKey(t *testing.T) {
	c := NewCache[string, int](time.Minute)

	assert.Nil(t, c.Get("absent"))
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache[string, string](10 * time.Millisecond)

	value := "soon gone"
	c.Set("key", &value)
	time.Sleep(25 * time.Millisecond)

	assert.Nil(t, c.Get("key"))
}

func TestCache_GetExtendsTTL(t *testing.T) {
	c := NewCache[string, string](40 * time.Millisecond)

	value := "sticky"
	c.Set("key", &value)

	// Keep touching the entry past its original TTL.
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		require.NotNil(t, c.Get("key"))
	}
}

func TestCache_Delete(t *testing.T) {
	c := NewCache[string, int](time.Minute)

	value := 1
	c.Set("key", &value)
	c.Delete("key")

	assert.Nil(t, c.Get("key"))
}
