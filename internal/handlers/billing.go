package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// webhookEvent is the payment provider's webhook envelope.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				Email string `json:"email"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// BillingWebhook verifies the provider signature and, on an activated
// subscription or captured payment, upgrades the paying user to admin.
func (h *Handler) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err)
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if !verifySignature(h.webhookSecret, body, signature) {
		respondError(w, http.StatusUnauthorized, "invalid signature", nil)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid webhook payload", err)
		return
	}

	switch event.Event {
	case "subscription.active", "payment.captured":
		email := event.Payload.Payment.Entity.Email
		if email == "" {
			break
		}
		user, err := h.store.GetUserByEmail(r.Context(), email)
		if errors.Is(err, db.ErrNotFound) {
			log.Warn("webhook for unknown user", zap.String("email", email))
			break
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "user lookup failed", err)
			return
		}
		if err := h.store.UpdateUserRole(r.Context(), user.ID, models.RoleAdmin); err != nil {
			respondError(w, http.StatusInternalServerError, "role update failed", err)
			return
		}
		log.Info("subscription activated",
			zap.String("user_id", user.ID), zap.String("event", event.Event))
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// verifySignature checks the hex HMAC-SHA256 of the raw body.
func verifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
