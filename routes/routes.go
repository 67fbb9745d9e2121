package routes

import (
	"net/http"
	"strings"
	"time"

	"ripple/handlers"
	"ripple/media"
	"ripple/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine: public auth and listing routes, the
// token-protected post routes, and the static mount for uploaded media.
func SetupRouter(jwtSecret string, store *media.Store) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5500", "http://127.0.0.1:5500"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Public routes
	router.POST("/api/auth/signup", handlers.Signup)
	router.POST("/api/auth/login", handlers.Login)
	router.GET("/api/posts", handlers.GetPosts)

	// Uploaded attachments, served read-only
	router.Static("/uploads", store.Dir())

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(jwtSecret))

	protected.POST("/posts", handlers.CreatePost)
	protected.POST("/posts/comment/:id", handlers.CommentPost)
	protected.PUT("/posts/like/:id", handlers.ToggleLike)
	protected.DELETE("/posts/:id", handlers.DeletePost)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
