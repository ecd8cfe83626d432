package http

import (
	"net/http"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	res, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "signed out")
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetSession(r.Context(), tokenFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "session", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req application.UpdatePasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_password", err)
		return
	}
	if err := h.service.UpdateOwnPassword(r.Context(), actorFromContext(r.Context()), req); err != nil {
		writeMappedError(r.Context(), w, "update_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "password updated")
}
