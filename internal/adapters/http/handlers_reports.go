package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/application"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
)

const (
	maxPhotoRequest   = 12 << 20
	photoFormMaxInMem = 4 << 20
)

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListReports(r.Context(), actorFromContext(r.Context()), r.URL.Query().Get("project_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "list_reports", err)
		return
	}
	writeSuccess(w, http.StatusOK, views)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetReport(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "report_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_report", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) saveReport(w http.ResponseWriter, r *http.Request) {
	var req application.SaveReportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "save_report", err)
		return
	}
	view, err := h.service.SaveReport(r.Context(), actorFromContext(r.Context()), req)
	if err != nil {
		writeMappedError(r.Context(), w, "save_report", err)
		return
	}
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	writeSuccess(w, status, view)
}

func (h *Handler) signReport(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.SignReport(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "report_id"), chi.URLParam(r, "slot"))
	if err != nil {
		writeMappedError(r.Context(), w, "sign_report", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) completeReport(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.CompleteReport(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "report_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "complete_report", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

// attachPhoto expects a multipart form with the image under "file".
func (h *Handler) attachPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoRequest)
	if err := r.ParseMultipartForm(photoFormMaxInMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeValidationError(r.Context(), w, "attach_photo", fmt.Errorf("photo exceeds %d bytes", maxPhotoRequest))
			return
		}
		writeValidationError(r.Context(), w, "attach_photo", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMappedError(r.Context(), w, "attach_photo", fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	photo, err := h.service.AttachPhoto(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "report_id"), chi.URLParam(r, "item_id"),
		application.PhotoInput{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
	if err != nil {
		writeMappedError(r.Context(), w, "attach_photo", err)
		return
	}
	writeSuccess(w, http.StatusCreated, photo)
}

func (h *Handler) removePhoto(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemovePhoto(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "report_id"), chi.URLParam(r, "item_id"), chi.URLParam(r, "photo_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "remove_photo", err)
		return
	}
	writeMessage(w, http.StatusOK, "photo removed")
}
