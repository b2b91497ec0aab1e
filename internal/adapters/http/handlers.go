package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"classroll/internal/adapters/http/middleware"
	"classroll/internal/application/orchestrators"
	"classroll/internal/domain/account"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SignedIn          bool         `json:"signedIn"`
	Username          string       `json:"username,omitempty"`
	FullName          string       `json:"fullName,omitempty"`
	Role              account.Role `json:"role,omitempty"`
	CanEditAttendance bool         `json:"canEditAttendance"`
	CanManageUsers    bool         `json:"canManageUsers"`
}

func newSessionResponse(acct account.Account, ok bool) sessionResponse {
	if !ok {
		return sessionResponse{}
	}
	return sessionResponse{
		SignedIn:          true,
		Username:          acct.Username,
		FullName:          acct.FullName,
		Role:              acct.Role,
		CanEditAttendance: acct.CanEditAttendance(),
		CanManageUsers:    acct.CanManageUsers(),
	}
}

// handleLogin handles POST /api/login.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	_, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}, orchestrators.LoginDeps{Session: s.app.Session})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(s.app.Session.Current()))
}

// handleLogout handles POST /api/logout.
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutDeps{Session: s.app.Session}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{})
}

// handleSession handles GET /api/session.
// The response carries the CSRF token for bodyless POSTs.
func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(middleware.TokenHeader, csrf.Token(r))
	writeJSON(w, http.StatusOK, newSessionResponse(s.app.Session.Current()))
}
