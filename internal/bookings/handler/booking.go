package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"silvalley/internal/bookings/service"
	apperrors "silvalley/pkg/errors"
	httputil "silvalley/pkg/http"
	"silvalley/pkg/logger"
	"silvalley/pkg/middleware"
	"silvalley/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const dateLayout = "2006-01-02"

type BookingHandler struct {
	service       service.BookingService
	log           *logger.Logger
	webhookSecret string
}

func NewBookingHandler(service service.BookingService, log *logger.Logger, webhookSecret string) *BookingHandler {
	return &BookingHandler{
		service:       service,
		log:           log,
		webhookSecret: webhookSecret,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if err := h.service.Create(r.Context(), claims, &booking); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	booking, err := h.service.GetByID(r.Context(), claims, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := parseBookingFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	bookings, total, err := h.service.GetAll(r.Context(), claims, filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	bookings, total, err := h.service.GetMine(r.Context(), claims, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	booking, err := h.service.Cancel(r.Context(), claims, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if err := h.service.SetStatus(r.Context(), claims, ps.ByName("id"), body.Status); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/my", h.GetMine)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/bookings/id/:id/status", h.SetStatus)

	router.POST("/api/v1/bookings/drafts", h.StartDraft)
	router.GET("/api/v1/bookings/drafts/:id", h.GetDraft)
	router.PATCH("/api/v1/bookings/drafts/:id/dates", h.SetDraftDates)
	router.PATCH("/api/v1/bookings/drafts/:id/seats", h.SetDraftSeats)
	router.POST("/api/v1/bookings/drafts/:id/advance", h.AdvanceDraft)
	router.POST("/api/v1/bookings/drafts/:id/back", h.BackDraft)
	router.POST("/api/v1/bookings/drafts/:id/submit", h.SubmitDraft)

	// The webhook is verified by HMAC signature, not by a bearer token, so it
	// gets its own middleware instead of the shared auth chain.
	verify := middleware.WebhookSignatureVerification(h.webhookSecret, h.log)
	router.Handler(http.MethodPost, "/api/v1/payments/webhook", verify(http.HandlerFunc(h.paymentWebhook)))
}

func parseBookingFilter(r *http.Request) (*model.BookingFilter, error) {
	query := r.URL.Query()

	filter := &model.BookingFilter{
		UserID:  query.Get("user_id"),
		SpaceID: query.Get("space_id"),
		Status:  query.Get("status"),
	}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid from parameter: %s, must be YYYY-MM-DD", fromStr))
		}
		filter.From = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid to parameter: %s, must be YYYY-MM-DD", toStr))
		}
		filter.To = &to
	}

	return filter, nil
}
