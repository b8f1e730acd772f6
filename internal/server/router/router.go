package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/server/handlers"
	"github.com/mamadbah2/shopledger/internal/server/middleware"
	"github.com/mamadbah2/shopledger/internal/service/auth"
)

// New wires the Gin engine with required routes and middlewares.
func New(
	authHandler *handlers.AuthHandler,
	productHandler *handlers.ProductHandler,
	customerHandler *handlers.CustomerHandler,
	tokens *auth.JWTManager,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.WithRequestID())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/user-details", middleware.RequireAuth(tokens), authHandler.UserDetails)
	}

	products := r.Group("/products", middleware.RequireAuth(tokens))
	{
		products.POST("", productHandler.Add)
		products.GET("", productHandler.List)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
	}

	customers := r.Group("/customers", middleware.RequireAuth(tokens))
	{
		customers.POST("/add", customerHandler.Add)
		customers.GET("", customerHandler.List)
		customers.PUT("/:customerId", customerHandler.UpdatePayment)
		customers.DELETE("/:customerId", customerHandler.Delete)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("client_ip", c.ClientIP()))
	}
}
