package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

func TestUnifiedCache(t *testing.T) {
	c := NewUnifiedCache[[]models.Destination](time.Minute, "test", zap.NewNop())

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []models.Destination{{ID: 1, Name: "Tokyo"}})
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "Tokyo", got[0].Name)

	assert.Equal(t, CacheMetrics{Hits: 1, Misses: 1, Sets: 1}, c.GetMetrics())
}

func TestUnifiedCacheExpires(t *testing.T) {
	c := NewUnifiedCache[int](20*time.Millisecond, "short", nil)
	c.Set("k", 1)
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheManagerMetrics(t *testing.T) {
	cm := NewCacheManager(time.Minute, nil)
	cm.Destinations.Set("all", []models.Destination{{ID: 1}})
	_, ok := cm.Destinations.Get("all")
	require.True(t, ok)

	all := cm.GetAllMetrics()
	require.Contains(t, all, "destinations")
	assert.Equal(t, CacheMetrics{Hits: 1, Sets: 1}, all["destinations"])
}

func TestCacheKeyBuilder(t *testing.T) {
	a, err := NewCacheKeyBuilder().Add("region", "Asia").Add("price", []int{1, 2}).Build()
	require.NoError(t, err)
	b, err := NewCacheKeyBuilder().Add("region", "Asia").Add("price", []int{1, 2}).Build()
	require.NoError(t, err)
	c, err := NewCacheKeyBuilder().Add("region", "Europe").Build()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}
