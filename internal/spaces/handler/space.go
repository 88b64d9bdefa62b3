package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"silvalley/internal/spaces/service"
	apperrors "silvalley/pkg/errors"
	httputil "silvalley/pkg/http"
	"silvalley/pkg/logger"
	"silvalley/pkg/middleware"
	"silvalley/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SpaceHandler struct {
	service service.SpaceService
	log     *logger.Logger
}

func NewSpaceHandler(service service.SpaceService, log *logger.Logger) *SpaceHandler {
	return &SpaceHandler{
		service: service,
		log:     log,
	}
}

func (h *SpaceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var space model.Space
	if err := json.NewDecoder(r.Body).Decode(&space); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &space); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, space); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *SpaceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	space, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, space); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SpaceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := parseSpaceFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	spaces, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, spaces, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *SpaceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	id := ps.ByName("id")

	var updates model.SpaceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SpaceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SpaceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/spaces", h.GetAll)
	router.GET("/api/v1/spaces/id/:id", h.GetByID)
	router.POST("/api/v1/spaces", h.Create)
	router.PATCH("/api/v1/spaces/id/:id", h.Update)
	router.DELETE("/api/v1/spaces/id/:id", h.Delete)
}

// requireAdmin gates catalog mutations. Reads are public, so authentication
// is optional at the middleware layer and enforced here instead.
func requireAdmin(r *http.Request) error {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if claims.Role != model.RoleAdmin {
		return apperrors.Forbidden("Admin access required")
	}
	return nil
}

func parseSpaceFilter(r *http.Request) (*model.SpaceFilter, error) {
	query := r.URL.Query()

	filter := &model.SpaceFilter{
		Search:    query.Get("search"),
		Location:  query.Get("location"),
		Amenities: query["amenity"],
	}

	if minStr := query.Get("min_price"); minStr != "" {
		min, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid min_price parameter: %s", minStr))
		}
		filter.MinPrice = &min
	}

	if maxStr := query.Get("max_price"); maxStr != "" {
		max, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid max_price parameter: %s", maxStr))
		}
		filter.MaxPrice = &max
	}

	return filter, nil
}
