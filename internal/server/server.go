// Package server exposes the ledger over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mmynk/fairshare/internal/auth"
	"github.com/mmynk/fairshare/internal/ledger"
	"github.com/mmynk/fairshare/internal/middleware"
	"github.com/mmynk/fairshare/internal/service"
	"github.com/mmynk/fairshare/internal/storage"
)

// Server routes HTTP requests to the ledger service. Authentication is
// optional: with a nil JWT manager the API trusts the actor named in each
// request, which is how the demo fixture runs.
type Server struct {
	svc     *service.LedgerService
	store   storage.Store
	authn   auth.Authenticator
	jwt     *auth.JWTManager
	metrics http.Handler
}

// New creates a server. authn and jwt may be nil to disable authentication;
// metricsHandler may be nil to disable the /metrics route.
func New(svc *service.LedgerService, store storage.Store, authn auth.Authenticator, jwt *auth.JWTManager, metricsHandler http.Handler) *Server {
	return &Server{svc: svc, store: store, authn: authn, jwt: jwt, metrics: metricsHandler}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	if s.authEnabled() {
		mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
		mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	}

	mux.HandleFunc("GET /api/v1/groups", s.handleListGroups)
	mux.HandleFunc("GET /api/v1/groups/{key}", s.handleGetGroup)
	mux.HandleFunc("GET /api/v1/groups/{key}/users/{user}", s.handleGroupUserData)
	mux.HandleFunc("GET /api/v1/groups/{key}/transactions", s.handleGroupTransactions)
	mux.HandleFunc("GET /api/v1/users", s.handleListUsers)
	mux.HandleFunc("GET /api/v1/users/{key}", s.handleGetUser)
	mux.HandleFunc("GET /api/v1/users/{key}/transactions", s.handleUserTransactions)

	mutating := http.NewServeMux()
	mutating.HandleFunc("POST /api/v1/groups/{key}/send", s.handleSend)
	mutating.HandleFunc("POST /api/v1/groups/{key}/pay", s.handlePay)
	mutating.HandleFunc("POST /api/v1/groups/{key}/certificates", s.handleIssue)
	mutating.HandleFunc("POST /api/v1/groups/{key}/invest", s.handleInvest)
	mutating.HandleFunc("POST /api/v1/groups/{key}/withdraw", s.handleWithdraw)
	mutating.HandleFunc("POST /api/v1/users/{key}/redeem", s.handleRedeem)
	mutating.HandleFunc("POST /api/v1/users/{key}/drain", s.handleDrain)

	var mutatingHandler http.Handler = mutating
	if s.authEnabled() {
		mutatingHandler = middleware.RequireAuth(s.jwt)(mutating)
	}
	mux.Handle("POST /api/v1/", mutatingHandler)

	return middleware.Logging(corsMiddleware(mux))
}

func (s *Server) authEnabled() bool {
	return s.jwt != nil && s.authn != nil
}

// actorAllowed checks that the authenticated user, if any, is the actor a
// request names. Without authentication every actor is trusted.
func (s *Server) actorAllowed(r *http.Request, actor string) bool {
	if !s.authEnabled() {
		return true
	}
	return middleware.GetUserKey(r.Context()) == actor
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError maps ledger and service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := ledger.KindOf(err)
	switch {
	case errors.Is(err, service.ErrUnknownGroup),
		errors.Is(err, service.ErrUnknownUser),
		errors.Is(err, service.ErrNoPendingCertificates),
		kind == ledger.KindUnknownUser:
		status = http.StatusNotFound
	case kind == ledger.KindReusedCertificate:
		status = http.StatusConflict
	case ledger.IsInsufficientFunds(err):
		status = http.StatusConflict
	case ledger.IsInvalidInput(err):
		status = http.StatusBadRequest
	}
	resp := errorResponse{Error: err.Error()}
	if kind != 0 {
		resp.Kind = kind.String()
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeForbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, errorResponse{Error: "actor does not match the authenticated user"})
}
