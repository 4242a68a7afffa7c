package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/weeklybasket/storefront/internal/checkout"
	"github.com/weeklybasket/storefront/internal/domain"
)

type CheckoutHandler struct {
	submitter *checkout.Submitter
	timeout   time.Duration
}

func NewCheckoutHandler(submitter *checkout.Submitter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		submitter: submitter,
		timeout:   timeout,
	}
}

type CheckoutRequestDTO struct {
	UserInfo     domain.UserInfo `json:"user_info"`
	AdminContext bool            `json:"admin_context"`
}

type CheckoutResponseDTO struct {
	OrderID string `json:"order_id"`
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	orderID, err := h.submitter.Submit(ctx, req.UserInfo, req.AdminContext)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	log.Printf("checkout succeeded: order %s (request %s)", orderID, getRequestID(r.Context()))
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{OrderID: orderID})
}

func (h *CheckoutHandler) respondSubmitError(w http.ResponseWriter, err error) {
	var precondition *checkout.PreconditionError
	var rejection *checkout.RejectionError

	switch {
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.As(err, &precondition):
		respondError(w, http.StatusBadRequest, "precondition_failed", precondition.Message)
	case errors.As(err, &rejection):
		respondJSON(w, http.StatusUnprocessableEntity, RejectionResponse{Errors: rejection.Reasons})
	default:
		respondBackendError(w, err)
	}
}
