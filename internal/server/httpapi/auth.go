package httpapi

import (
	"errors"
	"net/http"

	"cryptopay/internal/server/repository"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var body registerRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	user, err := r.services.Auth.Register(req.Context(), body.Email, body.Password, body.DisplayName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if !r.decodeBody(w, req, &body) {
		return
	}
	tokens, err := r.services.Auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if err := r.services.Auth.Logout(req.Context(), getUserID(req.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (r *Router) handleUserDetails(w http.ResponseWriter, req *http.Request) {
	user, err := r.services.Auth.UserDetails(req.Context(), getUserID(req.Context()))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (r *Router) handleUpdateDisplayName(w http.ResponseWriter, req *http.Request) {
	var body struct {
		DisplayName string `json:"displayName"`
	}
	if !r.decodeBody(w, req, &body) {
		return
	}
	if err := r.services.Auth.UpdateDisplayName(req.Context(), getUserID(req.Context()), body.DisplayName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "display name updated"})
}

func (r *Router) handleUpdatePassword(w http.ResponseWriter, req *http.Request) {
	var body struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !r.decodeBody(w, req, &body) {
		return
	}
	if err := r.services.Auth.UpdatePassword(req.Context(), getUserID(req.Context()), body.OldPassword, body.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
