// internal/api/routes/routes.go
package routes

import (
	"time"

	"waste-docket-api-server/config"
	"waste-docket-api-server/internal/api/handlers"
	"waste-docket-api-server/internal/api/middleware"
	"waste-docket-api-server/internal/resolvers"
	"waste-docket-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the components the router hands to its handlers.
type Dependencies struct {
	Ops     handlers.Operations
	Secrets resolvers.SecretSource
	Hub     *socket.Hub
	DB      handlers.Pinger // optional, used by /healthz
	Log     *zap.Logger
}

func corsConfig(cfg config.ServerConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}

// SetupRouter wires every HTTP route onto a new engine.
func SetupRouter(cfg config.Config, deps Dependencies) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	requests := middleware.NewRequestMiddleware(log)
	router := gin.New()
	router.Use(requests.RecoverPanic(), requests.ProcessRequest(), cors.New(corsConfig(cfg.Server)))

	graphqlHandler := &handlers.GraphQLHandler{Ops: deps.Ops}
	uploadHandler := &handlers.UploadHandler{Ops: deps.Ops}
	webSocketHandler := &handlers.WebSocketHandler{Hub: deps.Hub, Secrets: deps.Secrets, Log: log}
	healthHandler := &handlers.HealthHandler{DB: deps.DB}

	router.GET("/healthz", healthHandler.Healthz)
	router.POST("/graphql", middleware.Credentials(), graphqlHandler.ServeGraphQL)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		ops := apiV1.Group("/")
		ops.Use(middleware.Credentials())
		{
			ops.POST("/graphql", graphqlHandler.ServeGraphQL)

			fleets := ops.Group("/fleets/:fleetId")
			{
				fleets.POST("/customers/import", uploadHandler.ImportCustomers)
				fleets.POST("/permits", uploadHandler.UploadPermit)
			}
		}
	}

	return router
}
