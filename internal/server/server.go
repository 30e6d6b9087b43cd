// Package server wires the gin router, middleware and handlers into an http.Server.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emilythestrangee/pyra/backend/internal/apperrors"
	"github.com/emilythestrangee/pyra/backend/internal/auth"
	"github.com/emilythestrangee/pyra/backend/internal/config"
	"github.com/emilythestrangee/pyra/backend/internal/content"
	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/handlers"
	"github.com/emilythestrangee/pyra/backend/internal/lock"
	"github.com/emilythestrangee/pyra/backend/internal/logging"
	"github.com/emilythestrangee/pyra/backend/internal/ranking"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

type Options struct {
	Config *config.Config
	DB     *database.Database
	// Locker serializes votes; nil means an in-process lock only.
	Locker lock.Locker[voting.VoteKey]
	Clock  clockwork.Clock
	Logger *slog.Logger
}

type Server struct {
	cfg     *config.Config
	db      *database.Database
	tokens  *auth.Issuer
	handler *handlers.Handler
	logger  *slog.Logger
}

func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	engineOpts := []voting.Option{voting.WithClock(opts.Clock), voting.WithLogger(opts.Logger)}
	if opts.Locker != nil {
		engineOpts = append(engineOpts, voting.WithLocker(opts.Locker))
	}
	votes := voting.NewEngine(opts.DB.DB, engineOpts...)
	tokens := auth.NewIssuer(opts.Config.JWTSecret, opts.Config.TokenTTL, opts.Clock)

	return &Server{
		cfg:    opts.Config,
		db:     opts.DB,
		tokens: tokens,
		handler: handlers.NewHandler(handlers.Deps{
			Content: content.NewRepository(opts.DB.DB, votes, opts.Clock),
			Votes:   votes,
			Scorer:  ranking.NewScorer(opts.Clock, opts.Config.HotDecay),
			Tokens:  tokens,
		}),
		logger: opts.Logger,
	}
}

// HTTPServer returns an http.Server listening on PORT.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Requests(s.logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(apperrors.Middleware())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := s.handler
	requireAuth := auth.RequireAuth(s.tokens)
	optionalAuth := auth.OptionalAuth(s.tokens)

	// Public
	r.POST("/signup", h.Auth.Signup)
	r.POST("/login", h.Auth.Login)
	r.DELETE("/logout", h.Auth.Logout)

	r.GET("/user/:id", h.User.GetUser)
	r.GET("/users", h.User.GetUsers)

	r.GET("/articles", h.Article.GetArticles)
	r.GET("/article/:id", h.Article.GetArticle)

	r.GET("/votes/:type/:id", optionalAuth, h.Vote.GetVotes)
	r.POST("/votes/batch", h.Vote.BatchCounts)

	// Protected routes (authentication required)
	protected := r.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/check_session", h.Auth.CheckSession)
		protected.PATCH("/user/:id", h.User.UpdateUser)

		protected.POST("/create_article", h.Article.CreateArticle)
		protected.PATCH("/article/:id", h.Article.UpdateArticle)
		protected.DELETE("/article/:id", h.Article.DeleteArticle)

		protected.POST("/create_fact_check", h.FactCheck.CreateFactCheck)
		protected.DELETE("/fact_check/:id", h.FactCheck.DeleteFactCheck)

		protected.POST("/create_comment", h.Comment.CreateComment)
		protected.DELETE("/comment/:id", h.Comment.DeleteComment)

		protected.POST("/votes/:type/:id", h.Vote.CastVote)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	stats := s.db.Health(c.Request.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
