package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	writeSuccess(w, http.StatusOK, profiles)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req application.CreateAccountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_user", err)
		return
	}
	profile, err := h.service.CreateAccount(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, profile)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_user", err)
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "user_id"), req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_user", err)
		return
	}
	writeSuccess(w, http.StatusOK, profile)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccountCompletely(r.Context(), actorFromContext(r.Context()), r.URL.Query().Get("email")); err != nil {
		writeMappedError(r.Context(), w, "delete_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "account deleted")
}
