package metrics

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	AuthRequestsTotal   metric.Int64Counter
	SwipesTotal         metric.Int64Counter
	MatchesCreatedTotal metric.Int64Counter
	GroupVotesTotal     metric.Int64Counter
	NotificationsTotal  metric.Int64Counter
	ConnectedClients    metric.Int64UpDownCounter
	CacheLookupsTotal   metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Instruments that fail to register fall back to no-ops and are logged.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("swipetrip")
		logger := zap.L().Named("metrics")
		m := &AppMetrics{}

		var err error
		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		logFailure(logger, "http_requests_total", err)

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		logFailure(logger, "http_request_duration_seconds", err)

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of authentication requests"),
			metric.WithUnit("{request}"),
		)
		logFailure(logger, "auth_requests_total", err)

		m.SwipesTotal, err = meter.Int64Counter(
			"swipes_total",
			metric.WithDescription("Total number of swipes recorded"),
			metric.WithUnit("{swipe}"),
		)
		logFailure(logger, "swipes_total", err)

		m.MatchesCreatedTotal, err = meter.Int64Counter(
			"buddy_matches_created_total",
			metric.WithDescription("Total number of travel buddy matches created"),
			metric.WithUnit("{match}"),
		)
		logFailure(logger, "buddy_matches_created_total", err)

		m.GroupVotesTotal, err = meter.Int64Counter(
			"group_votes_total",
			metric.WithDescription("Total number of group votes cast"),
			metric.WithUnit("{vote}"),
		)
		logFailure(logger, "group_votes_total", err)

		m.NotificationsTotal, err = meter.Int64Counter(
			"relay_notifications_total",
			metric.WithDescription("Notifications handed to the relay, by outcome"),
			metric.WithUnit("{event}"),
		)
		logFailure(logger, "relay_notifications_total", err)

		m.ConnectedClients, err = meter.Int64UpDownCounter(
			"relay_connected_clients",
			metric.WithDescription("Current number of subscribed WebSocket clients"),
			metric.WithUnit("{client}"),
		)
		logFailure(logger, "relay_connected_clients", err)

		m.CacheLookupsTotal, err = meter.Int64Counter(
			"cache_lookups_total",
			metric.WithDescription("Cache lookups, by cache and result"),
			metric.WithUnit("{lookup}"),
		)
		logFailure(logger, "cache_lookups_total", err)

		logger.Debug("Application metrics instruments initialized")
		appMetrics = m
	})
}

func logFailure(logger *zap.Logger, name string, err error) {
	if err != nil {
		logger.Error("Failed to create instrument", zap.String("instrument", name), zap.Error(err))
	}
}

// Get returns the application instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
