package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"socialgraph/backend/internal/identity"
	"socialgraph/backend/internal/metrics"
	"socialgraph/backend/internal/social"
	"socialgraph/backend/pkg/logger"
)

// Options configures the HTTP surface
type Options struct {
	Service  *social.Service
	Resolver identity.Resolver

	// Metrics and Gatherer are optional. /metrics is only mounted when Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// MediaDir is served under MediaRoute when both are set (disk media backend)
	MediaDir   string
	MediaRoute string

	MaxUploadBytes int64
}

// Server holds the handlers of the HTTP API
type Server struct {
	service   *social.Service
	resolver  identity.Resolver
	maxUpload int64
	logger    *zap.Logger
}

// NewRouter builds the gin engine with every route mounted
func NewRouter(opts Options) *gin.Engine {
	s := &Server{
		service:   opts.Service,
		resolver:  opts.Resolver,
		maxUpload: opts.MaxUploadBytes,
		logger:    logger.Named("api"),
	}

	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
	}
	router.Use(cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.MediaDir != "" && opts.MediaRoute != "" {
		router.Static(opts.MediaRoute, opts.MediaDir)
	}

	auth := s.requireActor()
	upload := s.limitBody()

	api := router.Group("/api")
	{
		api.POST("/auth/register", upload, s.Register)
		api.POST("/auth/login", s.Login)
		api.POST("/auth/logout", auth, s.Logout)

		api.GET("/users", auth, s.ListUsers)
		api.GET("/users/:userId", s.GetUser)
		api.GET("/users/:userId/profile", s.Profile)
		api.GET("/users/:userId/friends", s.GetFriends)
		api.GET("/users/:userId/posts", s.UserPosts)
		api.PATCH("/users/:userId", auth, upload, s.UpdateProfile)
		api.DELETE("/users/:userId", auth, s.DeleteAccount)
		api.GET("/usernames/:username", s.GetUserByUsername)
		api.GET("/search", s.Search)

		api.POST("/friends", auth, s.AddFriend)
		api.DELETE("/friends/:friendId", auth, s.RemoveFriend)

		api.GET("/posts", s.Feed)
		api.POST("/posts", auth, upload, s.CreatePost)
		api.GET("/posts/:postId", s.GetPost)
		api.PATCH("/posts/:postId", auth, s.UpdatePost)
		api.DELETE("/posts/:postId", auth, s.DeletePost)
		api.POST("/posts/:postId/like", auth, s.LikePost)
		api.GET("/posts/:postId/like", auth, s.IsPostLiked)
		api.GET("/posts/:postId/comments", s.ListComments)
		api.POST("/posts/:postId/comments", auth, s.AddComment)

		api.GET("/comments/:commentId", s.GetComment)
		api.PATCH("/comments/:commentId", auth, s.EditComment)
		api.DELETE("/comments/:commentId", auth, s.DeleteComment)
		api.POST("/comments/:commentId/like", auth, s.LikeComment)
		api.GET("/comments/:commentId/like", auth, s.IsCommentLiked)
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// limitBody caps request bodies on upload routes
func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.maxUpload > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
		}
		c.Next()
	}
}
