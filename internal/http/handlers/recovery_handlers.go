package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/renthub/laptop-bookings/internal/http/response"
)

// ForgotPassword issues a one-time passcode for the email. The code is
// returned in the body; there is no mail delivery in this system.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	code, err := h.recoveryService.RequestReset(r.Context(), req.Email)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("OTP sent to %s", req.Email),
		"otp":     code,
	})
}

// ResetPassword verifies the passcode and replaces the credential in one
// transaction.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.recoveryService.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}
