package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "silvalley/pkg/errors"
	httputil "silvalley/pkg/http"
	"silvalley/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

func (h *BookingHandler) StartDraft(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SpaceID string `json:"space_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "StartDraft", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	draft, err := h.service.StartDraft(r.Context(), claims, body.SpaceID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "StartDraft", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, draft); err != nil {
		h.log.Error("failed to write created response", "handler", "StartDraft", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	draft, err := h.service.GetDraft(claims, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetDraft", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, draft); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDraft", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) SetDraftDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetDraftDates", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	start, end, err := parseDateRange(body.StartDate, body.EndDate)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetDraftDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	draft, err := h.service.SetDraftDates(r.Context(), claims, ps.ByName("id"), start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetDraftDates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, draft); err != nil {
		h.log.Error("failed to write success response", "handler", "SetDraftDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) SetDraftSeats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Seats int `json:"seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetDraftSeats", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	draft, err := h.service.SetDraftSeats(r.Context(), claims, ps.ByName("id"), body.Seats)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetDraftSeats", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, draft); err != nil {
		h.log.Error("failed to write success response", "handler", "SetDraftSeats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) AdvanceDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	draft, err := h.service.AdvanceDraft(claims, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AdvanceDraft", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, draft); err != nil {
		h.log.Error("failed to write success response", "handler", "AdvanceDraft", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) BackDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	draft, err := h.service.BackDraft(claims, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BackDraft", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, draft); err != nil {
		h.log.Error("failed to write success response", "handler", "BackDraft", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) SubmitDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims := middleware.ClaimsFromContext(r.Context())

	booking, intent, err := h.service.SubmitDraft(r.Context(), claims, ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SubmitDraft", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	response := map[string]any{
		"booking":               booking,
		"payment_client_secret": intent.ClientSecret,
	}
	if err := httputil.WriteCreated(w, response); err != nil {
		h.log.Error("failed to write created response", "handler", "SubmitDraft", "operation", "WriteCreated", "error", err)
	}
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, invalidDate("start_date", startStr)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, invalidDate("end_date", endStr)
	}
	return start, end, nil
}

func invalidDate(field, value string) error {
	return apperrors.InvalidInput(fmt.Sprintf("invalid %s: %q, must be YYYY-MM-DD", field, value))
}
