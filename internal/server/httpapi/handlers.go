package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/server/auth"
)

// oauthStateValidity bounds how long a consent round-trip may take.
const oauthStateValidity = 10 * time.Minute

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorInvalidArgument)
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.UserName,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorInvalidArgument)
		return
	}

	pair, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenPairResponse{pair.AccessToken, pair.RefreshToken})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.writeError(w, r, common.ErrorInvalidArgument)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenPairResponse{pair.AccessToken, pair.RefreshToken})
}

func (s *Server) handleViewLines(w http.ResponseWriter, r *http.Request) {
	buckets, settings, err := s.records.View(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"buckets":  buckets,
		"settings": settings,
	})
}

func (s *Server) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line string `json:"line"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorInvalidArgument)
		return
	}

	if err := s.records.AddLine(r.Context(), UserID(r.Context()), req.Line); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetLines(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Reset(r.Context(), UserID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTravel(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.records.ToggleTravel(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"travel_enabled": enabled})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.sync.Import(r.Context(), UserID(r.Context()), r.URL.Query().Get("cursor"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.sync.Export(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	lines, err := s.records.Lines(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(s.feed.Render(lines, s.now())))
}

// handleGoogleConnect hands out the consent URL. The state is a short-lived
// JWT carrying the user ID, so the unauthenticated callback can attribute
// the code.
func (s *Server) handleGoogleConnect(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateToken(UserID(r.Context()), s.jwtSecret, oauthStateValidity)
	if err != nil {
		s.writeError(w, r, common.ErrorInternal)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"auth_url": s.oauth.AuthURL(state)})
}

func (s *Server) handleGoogleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.oauth.Disconnect(r.Context(), UserID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		s.writeError(w, r, common.ErrorInvalidArgument)
		return
	}

	userID, err := auth.GetUserIDFromToken(state, s.jwtSecret)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.oauth.Exchange(r.Context(), userID, code); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("calendar connected, you can close this window"))
}

// --- response helpers ---

type errorResponse struct {
	Error string `json:"error"`
}

func errUnauthorized(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrorInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrorRemoteUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
