package handler

import (
	"net/http"
	"strconv"

	"elegance/internal/middleware"
	"elegance/internal/model"
	"elegance/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PerfumeHandler handles catalog HTTP requests.
type PerfumeHandler struct {
	service service.PerfumeService
	logger  zerolog.Logger
}

// NewPerfumeHandler creates a new perfume handler.
func NewPerfumeHandler(service service.PerfumeService, logger zerolog.Logger) *PerfumeHandler {
	return &PerfumeHandler{
		service: service,
		logger:  logger.With().Str("handler", "perfume").Logger(),
	}
}

// GetAll handles GET /api/perfumes requests. Supports category, minPrice,
// maxPrice and search query parameters.
func (h *PerfumeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	perfumes, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if perfumes == nil {
		perfumes = []model.Perfume{}
	}
	writeJSON(w, http.StatusOK, perfumes)
}

// GetByID handles GET /api/perfumes/{id} requests.
func (h *PerfumeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, model.NewValidationError("invalid perfume id"), h.logger)
		return
	}

	perfume, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, perfume)
}

// Create handles POST /api/perfumes requests.
func (h *PerfumeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req model.PerfumeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	perfume, err := h.service.Create(r.Context(), user, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, perfume)
}

// Update handles PUT /api/perfumes/{id} requests.
func (h *PerfumeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, model.NewValidationError("invalid perfume id"), h.logger)
		return
	}

	var req model.PerfumeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	perfume, err := h.service.Update(r.Context(), user, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, perfume)
}

// Delete handles DELETE /api/perfumes/{id} requests.
func (h *PerfumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, model.NewValidationError("invalid perfume id"), h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "perfume deleted"})
}

func parseFilter(r *http.Request) (model.PerfumeFilter, error) {
	q := r.URL.Query()
	filter := model.PerfumeFilter{
		Category: model.Category(q.Get("category")),
		Search:   q.Get("search"),
	}

	if raw := q.Get("minPrice"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, model.NewValidationError("minPrice must be an integer")
		}
		filter.MinPrice = &v
	}
	if raw := q.Get("maxPrice"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, model.NewValidationError("maxPrice must be an integer")
		}
		filter.MaxPrice = &v
	}

	return filter, nil
}
