// Package transactions records immutable commercial events. A transaction is
// only ever created after the stock movements it describes are written in the
// same database transaction; this package never touches balances.
package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/internal/shifts"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
)

// LineInput is one cart or dispatch line frozen at commit time.
type LineInput struct {
	ArticleID       string
	ArticleName     string
	SizeCode        string
	SizeLabel       string
	Qty             int
	UnitPrice       decimal.Decimal
	LineDiscountPct decimal.Decimal
}

// CommitInput captures everything one commercial record needs.
type CommitInput struct {
	Channel          enums.Channel
	Lines            []LineInput
	OrderDiscountPct decimal.Decimal
	PaymentMethod    enums.PaymentMethod
	AmountPaid       decimal.Decimal
	CustomerID       *uuid.UUID
	Cashier          string
	ExternalRef      string
	// OccurredAt defaults to now; it drives shift slot and business date.
	OccurredAt time.Time
}

// Commit validates the input, computes totals from the line snapshots, and
// appends the transaction with its lines inside the caller's transaction.
//
// PR/gift dispatches are always logged at zero value: the unit price is
// forced to zero on every line regardless of catalog price, while the stock
// the caller already deducted stays deducted.
func Commit(ctx context.Context, tx *gorm.DB, input CommitInput) (*models.Transaction, error) {
	if !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid channel").
			WithDetails(map[string]string{"channel": string(input.Channel)})
	}
	if input.Channel == enums.ChannelTransfer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfers are recorded in the movement log only")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction requires at least one line")
	}
	if input.OrderDiscountPct.IsNegative() || input.OrderDiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order discount must be between 0 and 100")
	}
	if input.Cashier == "" {
		input.Cashier = "unknown"
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	lines := make([]models.TransactionLine, 0, len(input.Lines))
	subtotal := decimal.Zero
	for i, line := range input.Lines {
		if line.ArticleID == "" || line.SizeCode == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line requires article id and size code").
				WithDetails(map[string]any{"line": i})
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive").
				WithDetails(map[string]any{"line": i})
		}

		unitPrice := line.UnitPrice
		if input.Channel == enums.ChannelPR {
			unitPrice = decimal.Zero
		}

		row := models.TransactionLine{
			ArticleID:       line.ArticleID,
			ArticleName:     line.ArticleName,
			SizeCode:        line.SizeCode,
			SizeLabel:       line.SizeLabel,
			Qty:             line.Qty,
			UnitPrice:       unitPrice,
			LineDiscountPct: line.LineDiscountPct,
		}
		subtotal = subtotal.Add(row.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Qty))))
		lines = append(lines, row)
	}

	total := subtotal
	if !input.OrderDiscountPct.IsZero() {
		factor := decimal.NewFromInt(100).Sub(input.OrderDiscountPct).Div(decimal.NewFromInt(100))
		total = subtotal.Mul(factor).Round(2)
	}

	method := input.PaymentMethod
	amountPaid := input.AmountPaid
	if method == "" && input.Channel != enums.ChannelSale {
		// Dispatch channels settle outside the till; record them as paid.
		method = enums.PaymentMethodCash
		amountPaid = total
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]string{"payment_method": string(method)})
	}

	balance := total.Sub(amountPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	moment := shifts.ClassifyMoment(occurredAt)

	record := &models.Transaction{
		Channel:          input.Channel,
		Lines:            lines,
		Subtotal:         subtotal,
		OrderDiscountPct: input.OrderDiscountPct,
		Total:            total,
		PaymentMethod:    method,
		AmountPaid:       amountPaid,
		Balance:          balance,
		IsPartial:        amountPaid.LessThan(total),
		CustomerID:       input.CustomerID,
		ShiftSlot:        moment.Slot,
		BusinessDate:     moment.BusinessDate,
		Cashier:          input.Cashier,
		ExternalRef:      input.ExternalRef,
		CreatedAt:        occurredAt,
	}
	if err := tx.WithContext(ctx).Create(record).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending transaction")
	}
	return record, nil
}
