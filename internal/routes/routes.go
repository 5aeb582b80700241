package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/swipetrip/internal/app/domain/auth"
	"github.com/FACorreiaa/swipetrip/internal/app/domain/buddies"
	"github.com/FACorreiaa/swipetrip/internal/app/domain/destinations"
	"github.com/FACorreiaa/swipetrip/internal/app/domain/groups"
	"github.com/FACorreiaa/swipetrip/internal/app/domain/swipes"
	"github.com/FACorreiaa/swipetrip/internal/app/domain/user"
	"github.com/FACorreiaa/swipetrip/internal/app/jobs"
	"github.com/FACorreiaa/swipetrip/internal/app/middleware"
	"github.com/FACorreiaa/swipetrip/internal/app/relay"
	"github.com/FACorreiaa/swipetrip/internal/app/seed"
	"github.com/FACorreiaa/swipetrip/internal/app/store"
	"github.com/FACorreiaa/swipetrip/internal/pkg/cache"
	"github.com/FACorreiaa/swipetrip/internal/pkg/config"
)

type AppHandlers struct {
	Auth         *auth.AuthHandler
	User         *user.Handler
	Destinations *destinations.DestinationsHandler
	Swipes       *swipes.SwipesHandler
	Buddies      *buddies.BuddiesHandler
	Groups       *groups.GroupsHandler
	Relay        *relay.Handler
}

// App is the wired application: shared state, background jobs and handlers.
type App struct {
	// InstanceID is stamped into tokens and sessions and changes on every
	// start.
	InstanceID string
	Store      *store.MemStore
	Hub        *relay.Hub
	Identity   *auth.Identity
	Caches     *cache.CacheManager
	Watcher    *jobs.VoteWindowWatcher
	Handlers   *AppHandlers
}

// NewApp builds every dependency and loads the destination catalogue.
func NewApp(cfg *config.Config, log *zap.Logger) (*App, error) {
	st := store.New()
	n, err := seed.Load(st, log)
	if err != nil {
		return nil, fmt.Errorf("failed to seed destinations: %w", err)
	}
	log.Info("Destination catalogue loaded", zap.Int("destinations", n))

	instanceID := uuid.NewString()
	hub := relay.NewHub(cfg.Relay.SendBuffer, log)
	tokens := auth.NewTokenService(cfg.JWT, instanceID)
	identity := auth.NewIdentity(tokens, st)
	caches := cache.NewCacheManager(cfg.DestinationsTTL, log)

	// Create services
	authService := auth.NewAuthService(st, tokens, log)
	userService := user.NewUserService(st, log)
	destinationsService := destinations.NewDestinationsService(st, caches.Destinations, log)
	buddiesService := buddies.NewBuddiesService(st, hub, log)
	swipesService := swipes.NewSwipesService(st, buddiesService, log)
	groupsService := groups.NewGroupsService(st, hub, log)

	return &App{
		InstanceID: instanceID,
		Store:      st,
		Hub:        hub,
		Identity:   identity,
		Caches:     caches,
		Watcher:    jobs.NewVoteWindowWatcher(st, groupsService, hub, cfg.VoteWatchInterval, log),
		Handlers: &AppHandlers{
			Auth:         auth.NewAuthHandler(authService, instanceID, log),
			User:         user.NewHandler(userService, log),
			Destinations: destinations.NewDestinationsHandler(destinationsService, log),
			Swipes:       swipes.NewSwipesHandler(swipesService, log),
			Buddies:      buddies.NewBuddiesHandler(buddiesService, log),
			Groups:       groups.NewGroupsHandler(groupsService, log),
			Relay:        relay.NewHandler(hub, identity, cfg.Relay, log),
		},
	}, nil
}

// Close ends every open notification stream.
func (a *App) Close() {
	a.Hub.Close()
}

func Setup(r *gin.Engine, app *App, log *zap.Logger) {
	h := app.Handlers

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"caches": app.Caches.GetAllMetrics(),
		})
	})
	r.GET("/ws", h.Relay.HandleWebSocket)

	api := r.Group("/api")

	// Public routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}
	destinationsGroup := api.Group("/destinations", middleware.OptionalAuthMiddleware(app.Identity))
	{
		destinationsGroup.GET("", h.Destinations.List)
		destinationsGroup.GET("/:id", h.Destinations.Get)
		destinationsGroup.GET("/:id/details", h.Destinations.Details)
		destinationsGroup.GET("/:id/hotels", h.Destinations.Hotels)
		destinationsGroup.GET("/:id/highlights", h.Destinations.Highlights)
	}

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(app.Identity))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.GET("/auth/me", h.Auth.Me)

		protected.POST("/swipes", h.Swipes.Create)

		protected.GET("/users/:userId", h.User.Get)
		protected.PATCH("/users/:userId", h.User.Update)
		protected.GET("/users/:userId/likes", h.Swipes.Likes)
		protected.GET("/users/:userId/buddies", h.Buddies.List)
		protected.GET("/users/:userId/groups", h.Groups.ListForUser)

		protected.PATCH("/buddies/:id/status", h.Buddies.UpdateStatus)

		protected.POST("/groups", h.Groups.Create)
		protected.GET("/groups/:id", h.Groups.Get)
		protected.POST("/groups/:id/members", h.Groups.AddMember)
		protected.GET("/groups/:id/members", h.Groups.Members)
		protected.POST("/groups/:id/votes", h.Groups.Vote)
		protected.GET("/groups/:id/votes", h.Groups.Tally)
	}

	log.Info("Routes registered", zap.Int("count", len(r.Routes())))
}
