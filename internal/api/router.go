package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/bookrec/internal/api/handler"
	"github.com/timmy/bookrec/internal/api/middleware"
	"github.com/timmy/bookrec/internal/config"
	"github.com/timmy/bookrec/internal/logger"
)

// RouterDeps are the services the HTTP routes are served from.
type RouterDeps struct {
	Recommender handler.Recommender
	// BookCount reports the searchable catalog size for /health.
	BookCount func() int
	Logger    *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps RouterDeps, serverCfg config.ServerConfig) *gin.Engine {
	switch serverCfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  serverCfg.CORS.AllowedOrigins,
		AllowAllOrigins: serverCfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler(deps.BookCount)
	recommendHandler := handler.NewRecommendHandler(deps.Recommender)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/recommend", recommendHandler.Recommend)
		v1.GET("/recommend", recommendHandler.RecommendGet)

		v1.GET("/stats", recommendHandler.GetStats)
	}

	return r
}
