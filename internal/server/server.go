// Package server assembles the HTTP API: routes, middleware chain, and the
// WebSocket endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/server/handler"
	"github.com/nereuslabs/nereusd/internal/server/middleware"
	"github.com/nereuslabs/nereusd/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port            int
	CORSOrigins     []string
	APIKey          string // if empty, authentication is disabled
	RateLimitPerMin int    // if zero, rate limiting is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Markets   *handler.MarketHandler
	Buyers    *handler.BuyerHandler
	Orders    *handler.OrderHandler
	Liquidity *handler.LiquidityHandler
	Chat      *handler.ChatHandler
	Oracle    *handler.OracleHandler
	Users     *handler.UserHandler
	Book      *handler.OrderbookHandler
	Admin     *handler.AdminHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, rate limiting, auth) and attaches
// the WebSocket hub. limiter may be nil when rate limiting is disabled.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Market endpoints.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /api/markets/{id}/buyers", handlers.Buyers.Leaderboard)
	mux.HandleFunc("GET /api/markets/{id}/oracle", handlers.Oracle.GetSettings)
	mux.HandleFunc("GET /api/markets/{id}/orderbook", handlers.Book.GetOrderbook)
	mux.HandleFunc("POST /api/markets", handlers.Admin.CreateMarket)

	// Chat endpoints.
	mux.HandleFunc("GET /api/markets/{id}/chat", handlers.Chat.ListMessages)
	mux.HandleFunc("POST /api/markets/{id}/chat", handlers.Chat.PostMessage)

	// Order endpoint.
	mux.HandleFunc("POST /api/orders", handlers.Orders.PlaceOrder)

	// Liquidity endpoints.
	mux.HandleFunc("POST /api/liquidity/mint", handlers.Liquidity.Mint)
	mux.HandleFunc("POST /api/liquidity/merge", handlers.Liquidity.Merge)
	mux.HandleFunc("POST /api/faucet", handlers.Liquidity.Faucet)

	// User endpoints.
	mux.HandleFunc("GET /api/users/{address}/coins", handlers.Users.GetCoins)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)

	if limiter != nil && cfg.RateLimitPerMin > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerMin, time.Minute)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
