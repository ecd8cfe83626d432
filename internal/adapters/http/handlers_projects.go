package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
)

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "list_projects", err)
		return
	}
	writeSuccess(w, http.StatusOK, projects)
}

func (h *Handler) projectSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListProjectSummaries(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "project_summaries", err)
		return
	}
	writeSuccess(w, http.StatusOK, summaries)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req application.CreateProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_project", err)
		return
	}
	project, err := h.service.CreateProject(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_project", err)
		return
	}
	writeSuccess(w, http.StatusCreated, project)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	var req application.UpdateProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_project", err)
		return
	}
	project, err := h.service.UpdateProject(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "project_id"), req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_project", err)
		return
	}
	writeSuccess(w, http.StatusOK, project)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProject(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "project_id")); err != nil {
		writeMappedError(r.Context(), w, "delete_project", err)
		return
	}
	writeMessage(w, http.StatusOK, "project deleted")
}

func (h *Handler) prepareDraft(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.PrepareDraft(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "project_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "prepare_draft", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) pendingActions(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListPendingActions(r.Context(), actorFromContext(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		writeMappedError(r.Context(), w, "pending_actions", err)
		return
	}
	writeSuccess(w, http.StatusOK, groups)
}
