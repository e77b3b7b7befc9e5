package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clubbet/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// Server exposes the club betting operations over HTTP
type Server struct {
	uowFactory interfaces.UnitOfWorkFactory
	resolver   interfaces.TeamNameResolver
	httpServer *http.Server
}

// NewServer creates the HTTP server. resolver is optional; when nil each
// request resolves team names through its transaction-scoped match
// repository instead of an external cache.
func NewServer(addr string, uowFactory interfaces.UnitOfWorkFactory, resolver interfaces.TeamNameResolver) *Server {
	s := &Server{
		uowFactory: uowFactory,
		resolver:   resolver,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /bets", s.handlePlaceBet)
	mux.HandleFunc("GET /bets/{id}", s.handleGetBet)
	mux.HandleFunc("POST /bets/{id}/settle", s.handleSettleBet)
	mux.HandleFunc("POST /bets/{id}/cancel", s.handleCancelBet)
	mux.HandleFunc("POST /legs/{id}/settle", s.handleSettleLeg)
	mux.HandleFunc("GET /users/{id}/bets", s.handleGetUserBets)
	mux.HandleFunc("GET /users/{id}/bets/stats", s.handleGetUserStats)
	mux.HandleFunc("GET /users/{id}/wallet", s.handleGetWallet)
	mux.HandleFunc("GET /users/{id}/transactions", s.handleGetTransactions)
	mux.HandleFunc("POST /users/{id}/wallet/deposit", s.handleDeposit)
	mux.HandleFunc("POST /users/{id}/wallet/withdraw", s.handleWithdraw)
	mux.HandleFunc("GET /matches/{id}/bets", s.handleGetMatchBets)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      logRequests(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start runs the server until it fails or is shut down
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// logRequests logs method, path and duration for every request
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("Handled request")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.WithError(err).Error("Failed to encode response")
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
