package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/models"
)

// CacheManager holds all application caches
type CacheManager struct {
	// Filtered destination listings, keyed by the normalized filter.
	Destinations *UnifiedCache[[]models.Destination]
}

func NewCacheManager(destinationsTTL time.Duration, logger *zap.Logger) *CacheManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheManager{
		Destinations: NewUnifiedCache[[]models.Destination](destinationsTTL, "destinations", logger),
	}
}

// GetAllMetrics returns metrics for all caches
func (cm *CacheManager) GetAllMetrics() map[string]CacheMetrics {
	return map[string]CacheMetrics{
		"destinations": cm.Destinations.GetMetrics(),
	}
}
