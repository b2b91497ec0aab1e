package web

import (
	"net/http"

	"classroll/internal/application/orchestrators"
	"classroll/internal/application/projections"
	"classroll/internal/domain/account"
)

type userRequest struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	FullName string       `json:"fullName"`
	Role     account.Role `json:"role"`
}

func toUserRow(a account.Account) projections.UserRow {
	return projections.UserRow{
		Username:  a.Username,
		FullName:  a.FullName,
		Role:      a.Role,
		Protected: a.IsProtected(),
	}
}

func (s *server) saveUserDeps() orchestrators.SaveUserDeps {
	return orchestrators.SaveUserDeps{Directory: s.app.Directory, Session: s.app.Session}
}

// handleUserList handles GET /api/users.
func (s *server) handleUserList(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryUserList(r.Context(), projections.UserListDeps{
		Directory: s.app.Directory,
		Session:   s.app.Session,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleUserCreate handles POST /api/users.
func (s *server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	saved, err := orchestrators.ExecuteSaveUser(r.Context(), orchestrators.SaveUserInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	}, s.saveUserDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserRow(saved))
}

// handleUserUpdate handles PUT /api/users/{username}. An empty password
// keeps the current one.
func (s *server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	saved, err := orchestrators.ExecuteSaveUser(r.Context(), orchestrators.SaveUserInput{
		OriginalUsername: r.PathValue("username"),
		Username:         req.Username,
		Password:         req.Password,
		FullName:         req.FullName,
		Role:             req.Role,
	}, s.saveUserDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserRow(saved))
}

// handleUserDelete handles DELETE /api/users/{username}.
func (s *server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := orchestrators.ExecuteDeleteUser(r.Context(), orchestrators.DeleteUserInput{
		Username: r.PathValue("username"),
	}, orchestrators.DeleteUserDeps{Directory: s.app.Directory, Session: s.app.Session})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserRow(removed))
}
