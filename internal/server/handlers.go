package server

import (
	"errors"
	"net/http"

	"github.com/mmynk/fairshare/internal/auth"
	"github.com/mmynk/fairshare/internal/ledger"
)

func mode(preview bool) ledger.Mode {
	if preview {
		return ledger.Preview
	}
	return ledger.Commit
}

const defaultHistoryLimit = 50

// --- auth ---

type registerRequest struct {
	Name     string `json:"name"`
	Img      string `json:"img"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	UserKey string `json:"userKey"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	key := ledger.NameToKey(req.Name)
	account, err := s.authn.Register(r.Context(), key, req.Name, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, auth.ErrAccountExists) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	if s.svc.Ledger().User(key) == nil {
		s.svc.Ledger().CreateUser(req.Name, key, req.Img)
	}

	token, err := s.jwt.Generate(account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, UserKey: key})
}

type loginRequest struct {
	UserKey  string `json:"userKey"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := s.authn.Authenticate(r.Context(), req.UserKey, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	token, err := s.jwt.Generate(account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, UserKey: account.UserKey})
}

// --- read views ---

type groupSummary struct {
	Key                    string  `json:"key"`
	Name                   string  `json:"name"`
	Img                    string  `json:"img,omitempty"`
	Fee                    float64 `json:"fee"`
	Stipend                float64 `json:"stipend,omitempty"`
	GroupCoinReserve       int64   `json:"groupCoinReserve"`
	ReserveCurrencyReserve int64   `json:"reserveCurrencyReserve"`
}

func summarize(g *ledger.Group) groupSummary {
	coin, reserve := g.Reserves()
	return groupSummary{
		Key:                    g.Key,
		Name:                   g.Name,
		Img:                    g.Img,
		Fee:                    g.Fee,
		Stipend:                g.Stipend,
		GroupCoinReserve:       coin,
		ReserveCurrencyReserve: reserve,
	}
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	l := s.svc.Ledger()
	groups := make([]groupSummary, 0)
	for _, key := range l.GroupKeys() {
		if g := l.Group(key); g != nil {
			groups = append(groups, summarize(g))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) group(w http.ResponseWriter, r *http.Request) *ledger.Group {
	g := s.svc.Ledger().Group(r.PathValue("key"))
	if g == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown group"})
		return nil
	}
	return g
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g := s.group(w, r)
	if g == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"group":   summarize(g),
		"members": g.MemberKeys(),
	})
}

func (s *Server) handleGroupUserData(w http.ResponseWriter, r *http.Request) {
	g := s.group(w, r)
	if g == nil {
		return
	}
	writeJSON(w, http.StatusOK, g.UserData(r.PathValue("user")))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"users": s.svc.Ledger().UserKeys()})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u := s.svc.Ledger().User(r.PathValue("key"))
	if u == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown user"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"key":                 u.Key,
		"name":                u.Name,
		"img":                 u.Img,
		"pendingCertificates": u.PendingCertificates(),
	})
}

func (s *Server) handleGroupTransactions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history not enabled"})
		return
	}
	txs, err := s.store.ListTransactionsByGroup(r.Context(), r.PathValue("key"), defaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleUserTransactions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history not enabled"})
		return
	}
	txs, err := s.store.ListTransactionsByUser(r.Context(), r.PathValue("key"), defaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

// --- ledger operations ---

type sendRequest struct {
	Amount  float64 `json:"amount"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Preview bool    `json:"preview"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.actorAllowed(r, req.From) {
		writeForbidden(w)
		return
	}
	res, err := s.svc.Send(r.Context(), r.PathValue("key"), req.Amount, req.From, req.To, mode(req.Preview))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type payRequest struct {
	Amount  float64 `json:"amount"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	ToGroup string  `json:"toGroup"`
	Preview bool    `json:"preview"`
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.actorAllowed(r, req.From) {
		writeForbidden(w)
		return
	}
	if req.ToGroup == "" {
		req.ToGroup = r.PathValue("key")
	}
	res, err := s.svc.Pay(r.Context(), r.PathValue("key"), req.ToGroup, req.Amount, req.From, req.To, mode(req.Preview))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type issueRequest struct {
	Amount   float64 `json:"amount"`
	From     string  `json:"from"`
	Payee    string  `json:"payee"`
	Currency string  `json:"currency"`
	Preview  bool    `json:"preview"`
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.actorAllowed(r, req.From) {
		writeForbidden(w)
		return
	}
	if req.Currency == "" {
		req.Currency = ledger.FairShareKey
	}
	res, err := s.svc.IssueCertificate(r.Context(), r.PathValue("key"), req.Amount, req.From, req.Payee, req.Currency, mode(req.Preview))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type redeemRequest struct {
	Preview bool `json:"preview"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	payee := r.PathValue("key")
	if !s.actorAllowed(r, payee) {
		writeForbidden(w)
		return
	}
	res, err := s.svc.Redeem(r.Context(), payee, mode(req.Preview))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type investRequest struct {
	Amount  float64 `json:"amount"`
	User    string  `json:"user"`
	Preview bool    `json:"preview"`
}

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var req investRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.actorAllowed(r, req.User) {
		writeForbidden(w)
		return
	}
	res, err := s.svc.Invest(r.Context(), r.PathValue("key"), req.Amount, req.User, mode(req.Preview))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req investRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !s.actorAllowed(r, req.User) {
		writeForbidden(w)
		return
	}
	res, err := s.svc.Withdraw(r.Context(), r.PathValue("key"), req.Amount, req.User, mode(req.Preview))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("key")
	if !s.actorAllowed(r, user) {
		writeForbidden(w)
		return
	}
	drained, err := s.svc.DrainCertificates(r.Context(), user)
	if err != nil && len(drained) == 0 {
		writeError(w, err)
		return
	}
	resp := map[string]any{"drained": drained}
	if err != nil {
		// Partial drain: what settled stays settled, the rest is reported.
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
