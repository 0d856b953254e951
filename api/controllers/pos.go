package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hninyuwai/boutiquepos-backend/api/middleware"
	"github.com/hninyuwai/boutiquepos-backend/api/responses"
	"github.com/hninyuwai/boutiquepos-backend/api/validators"
	"github.com/hninyuwai/boutiquepos-backend/internal/pos"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ArticleID       string          `json:"article_id" validate:"required"`
	SizeCode        string          `json:"size_code" validate:"required"`
	Qty             int             `json:"qty" validate:"required,min=1"`
	LineDiscountPct decimal.Decimal `json:"line_discount_pct"`
}

type checkoutRequest struct {
	Lines            []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	OrderDiscountPct decimal.Decimal       `json:"order_discount_pct"`
	PaymentMethod    string                `json:"payment_method" validate:"required"`
	AmountPaid       decimal.Decimal       `json:"amount_paid"`
	CustomerID       *uuid.UUID            `json:"customer_id,omitempty"`
}

func PosCheckout(svc pos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := pos.CheckoutInput{
			OrderDiscountPct: payload.OrderDiscountPct,
			PaymentMethod:    method,
			AmountPaid:       payload.AmountPaid,
			CustomerID:       payload.CustomerID,
			Cashier:          middleware.CashierFromContext(r.Context()),
		}
		for _, line := range payload.Lines {
			input.Lines = append(input.Lines, pos.CartLine{
				ArticleID:       line.ArticleID,
				SizeCode:        line.SizeCode,
				Qty:             line.Qty,
				LineDiscountPct: line.LineDiscountPct,
			})
		}

		result, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
