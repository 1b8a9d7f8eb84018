package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"garage-reservation/internal/domain/user"
	"garage-reservation/internal/handler/api"
	"garage-reservation/internal/handler/middleware"
	"garage-reservation/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth      *api.AuthHandler
	Booking   *api.BookingHandler
	Garage    *api.GarageHandler
	Analytics *api.AnalyticsHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, cache *redis.Client) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, h, authMiddleware, cache)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, cache *redis.Client) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	responseCache := middleware.ResponseCache(cache, cfg.Redis.CacheTTL)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
			})
		}

		garage := apiGroup.Group("/garage")
		{
			addRoutes(garage, []route{
				{Method: http.MethodGet, Path: "/status", Handler: h.Garage.Status, Mw: []gin.HandlerFunc{responseCache}},
				{Method: http.MethodGet, Path: "/availability", Handler: h.Garage.Availability, Mw: []gin.HandlerFunc{responseCache}},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Booking.Create},
				{Method: http.MethodGet, Path: "/mine", Handler: h.Booking.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel},
				{Method: http.MethodPost, Path: "/:id/extend", Handler: h.Booking.Extend},
			})

			adminOnly := authMiddleware.RequireRoleAtLeast(user.RoleAdmin)
			addRoutes(bookings, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Booking.List, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPost, Path: "/:id/slot", Handler: h.Booking.AssignSlot, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: h.Booking.Reject, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Booking.Delete, Mw: []gin.HandlerFunc{adminOnly}},
			})
		}

		admin := apiGroup.Group("")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/analytics", Handler: h.Analytics.Summary, Mw: []gin.HandlerFunc{responseCache}},
				{Method: http.MethodGet, Path: "/export/csv", Handler: h.Analytics.ExportCSV},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

// addRoutes registers per-route middleware on gin's own handler chain, so
// middleware that wraps the downstream handler via c.Next() (the response
// cache) sees the written response.
func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		handlers := make([]gin.HandlerFunc, 0, len(r.Mw)+1)
		handlers = append(handlers, r.Mw...)
		handlers = append(handlers, r.Handler)
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, handlers...)
		case http.MethodPost:
			g.POST(r.Path, handlers...)
		case http.MethodPut:
			g.PUT(r.Path, handlers...)
		case http.MethodPatch:
			g.PATCH(r.Path, handlers...)
		case http.MethodDelete:
			g.DELETE(r.Path, handlers...)
		default:
			g.Any(r.Path, handlers...)
		}
	}
}
