package verify_api

import (
	"context"
	"errors"
	"fmt"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"ms-verify/internal/utils"
	"ms-verify/internal/verify"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Verifier interface {
	Verify(ctx context.Context, walletAddress string) (bool, error)
}

type Handler struct {
	Service Verifier
	Logger  *logger.Logger
}

func NewHandler(service Verifier, logger *logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Logger:  logger,
	}
}

// RegisterRoutes mounts the verification endpoint under the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/verify", func(r chi.Router) {
		// an empty wallet segment still reaches the handler so it can answer 400
		r.Get("/", h.VerifyWallet)
		r.Get("/{walletAddress}", h.VerifyWallet)
	})
}

// VerifyWallet answers GET /api/verify/{walletAddress} with {"verified": bool}
func (h *Handler) VerifyWallet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	walletAddress := chi.URLParam(r, "walletAddress")
	h.Logger.Debug("API", fmt.Sprintf("VerifyWallet: walletAddress=%q", walletAddress))

	verified, err := h.Service.Verify(r.Context(), walletAddress)
	if err != nil {
		status, message := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("API", fmt.Sprintf("VerifyWallet: %v", err))
		} else {
			h.Logger.Warn("API", fmt.Sprintf("VerifyWallet: %v", err))
		}
		if werr := utils.WriteError(w, status, message); werr != nil {
			h.Logger.Error("API", fmt.Sprintf("VerifyWallet: failed to encode error response: %v", werr))
		}
		h.Logger.LogAPI(r.Method, r.URL.Path, status, time.Since(start))
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, models.VerifyResponse{Verified: verified}); err != nil {
		h.Logger.Error("API", fmt.Sprintf("VerifyWallet: failed to encode response: %v", err))
		return
	}
	h.Logger.LogAPI(r.Method, r.URL.Path, http.StatusOK, time.Since(start))
}

// errorStatus maps a verification error to its status code and public message.
// Anything unrecognised is reported generically so internals never leak.
func errorStatus(err error) (int, string) {
	if errors.Is(err, verify.ErrWalletRequired) {
		return http.StatusBadRequest, verify.PublicMessage(err)
	}
	return http.StatusInternalServerError, verify.PublicMessage(err)
}

// Health answers GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
