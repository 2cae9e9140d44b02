package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-pulse/src/cache"
	"market-pulse/src/interfaces"
	"market-pulse/src/logger"
	"market-pulse/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

type Server struct {
	Config *models.MConfig
	Logger *logger.Logger
	Hub    *Hub
	Cache  *cache.IntradayCache
	DB     interfaces.IDatabase

	engine *gin.Engine
	http   *http.Server
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(cfg *models.MConfig, hub *Hub, intradayCache *cache.IntradayCache, db interfaces.IDatabase, log *logger.Logger) *Server {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config: cfg,
		Logger: log,
		Hub:    hub,
		Cache:  intradayCache,
		DB:     db,
		engine: gin.Default(),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, Authorization, accept, origin, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/dashboard", s.getDashboard)
	s.engine.GET("/api/intraday-history", s.getIntradayHistory)
	s.engine.GET("/api/daily-history", s.getDailyHistory)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.POST("/ingest", s.postIngest)

	// Live channels
	s.engine.GET(models.StreamPath, s.handleStream)
	s.engine.GET(models.StreamWebSocketPath, s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.Hub.Run()

	s.http = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *Server) Stop() error {
	s.Hub.Stop()

	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// -----------------------------------------------------------------------------

// Handler exposes the HTTP mux; tests attach it to an in-process listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}
