package handlers

import (
	"errors"
	"net/http"

	"github.com/josvita0323/devhost-2025-sub000/middleware"
	"github.com/josvita0323/devhost-2025-sub000/services"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateOrderInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.EventID == "" || input.TeamID == "" {
		badRequestResponse(w, r, errors.New("event_id and team_id are required"))
		return
	}

	order, err := h.paymentService.CreateOrder(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"order": order}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyPayment принимает order id, payment id и подпись шлюза. Повторная
// верификация уже записанного платежа отвечает успехом без новой записи.
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var input services.VerifyPaymentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.OrderID == "" || input.PaymentID == "" || input.Signature == "" {
		badRequestResponse(w, r, errors.New("order_id, payment_id and signature are required"))
		return
	}

	payment, err := h.paymentService.VerifyPayment(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"success": true,
		"payment": payment,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
