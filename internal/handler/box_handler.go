package handler

import (
	"errors"
	"go-success-stories/internal/middleware"
	"go-success-stories/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BoxHandler serves stored HTML fragments.
type BoxHandler struct {
	boxes service.BoxServicer
}

// NewBoxHandler creates a new BoxHandler.
func NewBoxHandler(bs service.BoxServicer) *BoxHandler {
	return &BoxHandler{boxes: bs}
}

// boxHandler writes the raw content of a box.
func (h *BoxHandler) boxHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	label := chi.URLParam(r, "label")
	content, err := h.boxes.Content(r.Context(), label)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Box not found", Code: http.StatusNotFound}
		}
		return internalError(err, "Failed to retrieve box")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(content))
	return nil
}
