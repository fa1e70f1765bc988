package handler

import (
	"net/http"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/domain/pricing"
	"github.com/edupode/mysterybox/internal/middleware"
	"github.com/edupode/mysterybox/internal/repository"
	"github.com/edupode/mysterybox/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkout と /payments
type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
	payments *usecase.PaymentUsecase
}

func NewCheckoutHandler(checkout *usecase.CheckoutUsecase, payments *usecase.PaymentUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, payments: payments}
}

type CheckoutRequest struct {
	Email           string `json:"email"`
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
	TaxID           string `json:"tax_id"`
	PaymentMethod   string `json:"payment_method"`
	ShippingMethod  string `json:"shipping_method"`
	SuccessURL      string `json:"success_url"`
	CancelURL       string `json:"cancel_url"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/checkout", h.createCheckout,
		middleware.OptionalAuthJWT(cfg),
		middleware.OptionalTokenVersionGuard(userRepo),
	)

	e.GET("/shipping-methods", h.shippingMethods)

	//決済完了ページからポーリングされる
	e.GET("/payments/:session_id/status", h.paymentStatus)
}

func (h *CheckoutHandler) createCheckout(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.checkout.Checkout(c.Request().Context(), usecase.CheckoutInput{
		SessionID:       sessionID(c),
		UserID:          optionalUserID(c),
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
		TaxID:           req.TaxID,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
		SuccessURL:      req.SuccessURL,
		CancelURL:       req.CancelURL,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) paymentStatus(c echo.Context) error {
	out, err := h.payments.GetPaymentStatus(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 配送方法の一覧（料金の安い順）
func (h *CheckoutHandler) shippingMethods(c echo.Context) error {
	return c.JSON(http.StatusOK, pricing.ShippingMethods())
}
