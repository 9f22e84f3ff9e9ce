package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auto_repost_instagram/config"
	"auto_repost_instagram/internal/domain"
	"auto_repost_instagram/internal/logger"
	"auto_repost_instagram/internal/policy"
	"auto_repost_instagram/internal/usecase"
)

// Server exposes a lightweight REST API for source accounts and post history.
type Server struct {
	cfg            *config.Config
	accountManager *usecase.AccountManager
	postRepo       domain.PostRepository
	now            func() time.Time
	handler        http.Handler
	server         *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, accountManager *usecase.AccountManager, postRepo domain.PostRepository) *Server {
	mux := http.NewServeMux()
	s := &Server{
		cfg:            cfg,
		accountManager: accountManager,
		postRepo:       postRepo,
		now:            time.Now,
	}

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/accounts", s.handleAccounts)
	mux.HandleFunc("/api/accounts/", s.handleAccountActions)
	mux.HandleFunc("/api/posts/recent", s.handleRecentPosts)
	mux.Handle("/metrics", promhttp.Handler())

	s.handler = loggingMiddleware(mux)
	s.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving HTTP requests in a separate goroutine.
func (s *Server) Start() error {
	if s.cfg.ServerPort == "" {
		return fmt.Errorf("server port is not configured")
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Errorf("http api server stopped with error: %v", err)
		}
	}()
	logger.Info().Printf("HTTP API server listening on %s", s.server.Addr)
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAccounts(w, r)
	case http.MethodPost:
		s.registerAccounts(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAccountActions(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
	if username == "" || strings.Contains(username, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getAccount(w, r, username)
	case http.MethodDelete:
		s.deleteAccount(w, r, username)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleRecentPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	records, err := s.postRepo.ListRecent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]*postResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toPostResponse(record))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"posts": resp,
		"count": len(resp),
	})
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accountManager.ListAccounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := s.now()
	resp := make([]*accountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, s.toAccountResponse(account, now))
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) registerAccounts(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username  string   `json:"username"`
		Usernames []string `json:"usernames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	usernames := payload.Usernames
	if payload.Username != "" {
		usernames = append(usernames, payload.Username)
	}
	if len(usernames) == 0 {
		respondError(w, http.StatusBadRequest, "username or usernames is required")
		return
	}

	created, err := s.accountManager.RegisterUsernames(r.Context(), usernames)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int{
		"received": len(usernames),
		"created":  created,
	})
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request, username string) {
	account, err := s.accountManager.GetAccount(r.Context(), username)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.toAccountResponse(account, s.now()))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request, username string) {
	err := s.accountManager.DeleteAccount(r.Context(), username)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info().Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

type accountResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Type           string     `json:"type"`
	LastUploadAt   *time.Time `json:"last_upload_at,omitempty"`
	UsedMediaCount int        `json:"used_media_count"`
	UsedHashtags   []string   `json:"used_hashtags"`
	Eligible       bool       `json:"eligible"`
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (s *Server) toAccountResponse(account *domain.SourceAccount, now time.Time) *accountResponse {
	resp := &accountResponse{
		ID:             account.ID,
		Username:       account.Username,
		Type:           account.Type,
		LastUploadAt:   account.LastUploadAt,
		UsedMediaCount: len(account.UsedMediaIDs),
		UsedHashtags:   account.UsedHashtags,
		Eligible:       policy.IsEligible(account, now, s.cfg.Cooldown),
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
	if resp.UsedHashtags == nil {
		resp.UsedHashtags = []string{}
	}
	if !resp.Eligible {
		next := account.LastUploadAt.Add(s.cfg.Cooldown)
		resp.NextEligibleAt = &next
	}
	return resp
}

type postResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Type          string    `json:"type"`
	MediaIDs      []string  `json:"media_ids"`
	Hashtags      []string  `json:"hashtags"`
	RemoteMediaID string    `json:"remote_media_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPostResponse(record *domain.PostRecord) *postResponse {
	return &postResponse{
		ID:            record.ID,
		Username:      record.Username,
		Type:          string(record.Type),
		MediaIDs:      record.MediaIDs,
		Hashtags:      record.Hashtags,
		RemoteMediaID: record.RemoteMediaID,
		CreatedAt:     record.CreatedAt,
	}
}
