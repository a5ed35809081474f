package api

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crisoull/bodega/internal/auth"
	"github.com/crisoull/bodega/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// login handles POST /api/auth/login. Failed attempts count toward a
// per-username lockout; pre and post hooks run around the credential
// check.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	ctx := r.Context()
	if locked, remaining := s.Lockout.Locked(req.Username); locked {
		s.Log.Warn().Str("username", req.Username).Dur("remaining", remaining).Msg("login blocked by lockout")
		jsonError(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many failed attempts, try again in %s", remaining.Round(time.Second)))
		return
	}
	if err := s.Hooks.RunPre(ctx, req.Username); err != nil {
		jsonError(w, http.StatusForbidden, err.Error())
		return
	}

	fail := func() {
		s.Hooks.RunPost(ctx, auth.LoginEvent{Username: req.Username, Remote: r.RemoteAddr})
		if s.Lockout.Fail(req.Username) {
			s.Log.Warn().Str("username", req.Username).Msg("account locked out")
		}
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
	}

	user, err := s.Store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil {
		fail()
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.Log.Warn().Str("username", req.Username).Str("remote", r.RemoteAddr).Msg("login failed")
		fail()
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	s.Lockout.Reset(req.Username)
	s.Hooks.RunPost(ctx, auth.LoginEvent{Username: req.Username, Success: true, Remote: r.RemoteAddr})
	s.Log.Info().Str("user", user.Username).Str("role", user.Role).Msg("user logged in")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Role: user.Role})
}

// logout handles POST /api/auth/logout. Tokens are stateless; the
// endpoint exists so clients have a uniform place to end a session.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims != nil {
		s.Log.Info().Str("user", claims.Username).Msg("user logged out")
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// changePassword handles PUT /api/auth/password.
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.Store.GetUser(r.Context(), claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := s.Store.UpdateUserPassword(r.Context(), claims.UserID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	s.Log.Info().Str("user", claims.Username).Msg("user changed own password")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
