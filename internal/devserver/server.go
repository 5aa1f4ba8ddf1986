// internal/devserver/server.go

// Package devserver is an in-memory mock of the storefront backend, used by
// the demo CLI and by integration-style tests. It speaks the same wire
// contract the production API does: enveloped JSON, bearer auth with an
// access/refresh pair, wholesale cart/wishlist writes with a server-side
// stock check, and a websocket event stream.
package devserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chronoshop/internal/config"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	store  *memStore
	tokens *tokenIssuer
	hub    *hub

	httpSrv *http.Server
}

func New(cfg config.AppConfig, logger *zap.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:    cfg,
		engine: gin.New(),
		logger: logger,
		store:  newMemStore(),
		tokens: newTokenIssuer(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL),
		hub:    newHub(logger),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

// Engine exposes the router for httptest-based tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) routes() {
	api := s.engine.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== WebSocket ====================
	s.engine.GET("/ws", s.handleWS)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", s.handleRegister)
		authPublic.POST("/login", s.handleLogin)
		authPublic.POST("/refresh", s.handleRefresh)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(s.auth())
	{
		authProtected.POST("/logout", s.handleLogout)
		authProtected.GET("/me", s.handleMe)
	}

	// ==================== Users ====================
	users := api.Group("/users")
	users.Use(s.auth())
	{
		users.PATCH("/me", s.handleUpdateMe)
	}

	// ==================== Catalog ====================
	products := api.Group("/products")
	{
		products.GET("", s.handleListProducts)
		products.GET("/:id", s.handleGetProduct)
	}

	// ==================== Orders ====================
	orders := api.Group("/orders")
	orders.Use(s.auth())
	{
		orders.POST("", s.handlePlaceOrder)
		orders.GET("", s.handleListOrders)
		orders.GET("/:id", s.handleGetOrder)
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}
	s.logger.Info("mock backend listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
