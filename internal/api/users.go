package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crisoull/bodega/internal/model"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Role string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleManager || role == model.RoleUser
}

// listUsers handles GET /api/users.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Store.ListUsers(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("failed to list users")
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// createUser handles POST /api/users.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Role == "" {
		jsonError(w, http.StatusBadRequest, "username, password, and role required")
		return
	}
	if !validRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := s.Store.CreateUser(r.Context(), req.Username, string(hash), req.Role)
	if err != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().Str("user", claims.Username).Str("new_user", req.Username).Str("role", req.Role).Msg("user created")
	jsonResponse(w, http.StatusCreated, user)
}

// getUser handles GET /api/users/{id}.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.Store.GetUser(r.Context(), id)
	if err != nil {
		s.Log.Error().Err(err).Msg("failed to get user")
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// updateUser handles PUT /api/users/{id}.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if err := s.Store.UpdateUserRole(r.Context(), id, req.Role); err != nil {
		s.Log.Error().Err(err).Msg("failed to update user")
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	user, _ := s.Store.GetUser(r.Context(), id)
	claims := GetClaims(r.Context())
	if user != nil {
		s.Log.Info().Str("user", claims.Username).Str("target_user", user.Username).Str("new_role", req.Role).Msg("user role updated")
	}
	jsonResponse(w, http.StatusOK, user)
}

// resetUserPassword handles PUT /api/users/{id}/password.
func (s *Server) resetUserPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := s.Store.UpdateUserPassword(r.Context(), id, string(hash)); err != nil {
		s.Log.Error().Err(err).Msg("failed to reset password")
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	claims := GetClaims(r.Context())
	s.Log.Info().Str("user", claims.Username).Int64("target_id", id).Msg("user password reset")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// deleteUser handles DELETE /api/users/{id}.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	// Prevent self-deletion.
	claims := GetClaims(r.Context())
	if claims != nil && claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	if err := s.Store.DeleteUser(r.Context(), id); err != nil {
		s.Log.Error().Err(err).Msg("failed to delete user")
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	s.Log.Info().Str("user", claims.Username).Int64("deleted_id", id).Msg("user deleted")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
