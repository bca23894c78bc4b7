package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/cinelog/internal/api/handler"
	"github.com/jon4hz/cinelog/internal/auth"
	"github.com/jon4hz/cinelog/internal/config"
	"github.com/jon4hz/cinelog/internal/database"
	"github.com/jon4hz/cinelog/internal/movie"
)

// Server is the HTTP surface of cinelog.
type Server struct {
	cfg         *config.Config
	ginEngine   *gin.Engine
	httpServer  *http.Server
	authService *auth.Service
	handler     *handler.Handler
}

// New creates a new API server.
func New(cfg *config.Config, db database.DB, catalog handler.Catalog, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	authService := auth.NewService(db)
	movieService := movie.NewService(db, catalog)

	s := &Server{
		cfg:         cfg,
		ginEngine:   gin.New(),
		authService: authService,
		handler:     handler.New(authService, db, catalog, movieService),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.ginEngine.Use(gin.Recovery())
	s.ginEngine.Use(requestID())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("cinelog_session", store))
	s.ginEngine.Use(s.authService.LoadSession(s.cfg.DefaultLanguage))
}

func (s *Server) setupRoutes() {
	h := s.handler

	api := s.ginEngine.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.POST("/language", h.SetLanguage)

	api.GET("/movies/popular", h.PopularMovies)
	api.GET("/movies/search", h.SearchMovies)
	api.GET("/genres", h.Genres)
	api.GET("/movies/:id", h.MovieDetail)

	protected := api.Group("/")
	protected.Use(s.authService.RequireAuth())

	protected.POST("/movies/:id/rating", h.RateMovie)
	protected.GET("/me/ratings", h.MyRatings)
	protected.POST("/movies/:id/favorite", h.AddFavorite)
	protected.DELETE("/movies/:id/favorite", h.RemoveFavorite)
	protected.GET("/me/favorites", h.MyFavorites)
}

// requestID tags every request with an id for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.ginEngine
}
