package handler

import (
	"encoding/json"
	"net/http"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/application/otp"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/domain"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// OTPHandler handles passcode issuance and verification endpoints.
type OTPHandler struct {
	svc otp.Service
}

func NewOTPHandler(svc otp.Service) *OTPHandler {
	return &OTPHandler{svc: svc}
}

func (h *OTPHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "generate":
		var req domain.GenerateOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.Generate(r.Context(), req); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent"})
	case "verify":
		var req domain.VerifyOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		result, err := h.svc.Verify(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, VerifyEnvelope{Success: true, Email: result.Email, Token: result.Token})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
