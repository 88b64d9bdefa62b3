package handler

import (
	"encoding/json"
	"net/http"

	httputil "silvalley/pkg/http"
)

// webhookEvent is the payment processor's callback payload. Reference carries
// the booking ID we handed out when the intent was created.
type webhookEvent struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

const eventPaymentSucceeded = "payment_intent.succeeded"

// paymentWebhook is a plain http.HandlerFunc because it sits behind the HMAC
// signature middleware rather than the router's auth chain.
func (h *BookingHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid webhook payload",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "paymentWebhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if event.Type != eventPaymentSucceeded {
		// Unknown event types are acknowledged so the processor stops
		// retrying them; confirmation only happens on success events.
		h.log.Info("Ignoring payment webhook event", "type", event.Type)
		if err := httputil.WriteSuccess(w, map[string]string{"status": "ignored"}); err != nil {
			h.log.Error("failed to write success response", "handler", "paymentWebhook", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	if err := h.service.ConfirmFromWebhook(r.Context(), event.Reference); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "paymentWebhook", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "confirmed"}); err != nil {
		h.log.Error("failed to write success response", "handler", "paymentWebhook", "operation", "WriteSuccess", "error", err)
	}
}
