package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/kb-nav/internal/navigation"
	"github.com/romangod6/kb-nav/internal/storage"
	"github.com/romangod6/kb-nav/internal/utils"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

func NewServer(port int, store storage.Store, policy navigation.OrderPolicy, logger *utils.Logger) *Server {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	handler := NewHandler(store, policy, logger)

	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		articles := api.Group("/articles")
		{
			articles.GET("", handler.ListArticles)
			articles.GET("/search", handler.SearchArticles)
			articles.GET("/:id", handler.GetArticle)
			articles.GET("/:id/neighbors", handler.GetNeighbors)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", handler.ListCategories)
			categories.GET("/:id", handler.GetCategory)
			categories.GET("/:id/articles", handler.GetArticlesByCategory)
			categories.GET("/:id/trail", handler.GetCategoryTrail)
		}
	}

	return &Server{
		router: router,
		port:   port,
	}
}

// Handler returns the router, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
