package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/eaglebank/auth-api/shared/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps carries everything NewRouter wires into the engine.
type RouterDeps struct {
	Auth   *AuthHandler
	User   *UserHandler
	Tokens middleware.TokenParser
	Logger *zap.Logger

	// CORSAllowedOrigins is a comma separated list; "*" allows any origin.
	CORSAllowedOrigins string
	LoginRateLimit     int
	LoginRateWindow    time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(cors.New(corsConfig(deps.CORSAllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth-api"})
	})

	router.POST("/login", middleware.LoginRateLimit(deps.LoginRateLimit, deps.LoginRateWindow), deps.Auth.Login)

	authed := router.Group("/", middleware.AuthMiddleware(deps.Tokens))
	{
		authed.POST("/refresh-token", deps.Auth.RefreshToken)
		authed.GET("/me", deps.User.GetMe)
		authed.PUT("/update-email", deps.User.UpdateEmail)
		authed.PUT("/update-role", deps.User.UpdateRole)
		authed.DELETE("/delete-account", deps.User.DeleteAccount)
	}

	return router
}

func corsConfig(allowedOrigins string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	return config
}
