package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"review-room/internal/service"
	"review-room/pkg/apierror"
)

type MovieHandler struct {
	service *service.MovieService
}

func NewMovieHandler(service *service.MovieService) *MovieHandler {
	return &MovieHandler{service: service}
}

func (h *MovieHandler) Popular(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	payload, err := h.service.Popular(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, payload, nil)
}

func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	payload, err := h.service.Search(r.Context(), r.URL.Query().Get("query"), page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, payload, nil)
}

func (h *MovieHandler) Details(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, apierror.BadRequest("invalid movie id", "id"))
		return
	}

	payload, err := h.service.Details(r.Context(), movieID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, payload, nil)
}
