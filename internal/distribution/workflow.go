// Package distribution drives outbound dispatches from the warehouse: the
// scan-review-details-confirm state machine, the live workflow registry, and
// the single-transaction commit that turns a confirmed queue into ledger
// mutations, movements, and (for commercial channels) a transaction record.
package distribution

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
)

// Item is one queued variant in a workflow. UnitPrice is resolved at scan
// time (override or base) so a later price edit does not reprice the queue.
type Item struct {
	ArticleID   string          `json:"article_id"`
	ArticleName string          `json:"article_name"`
	SizeCode    string          `json:"size_code"`
	SizeLabel   string          `json:"size_label"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Workflow is the in-memory state of one outbound run. It performs no I/O;
// capacity numbers are supplied by the caller at each step so the machine
// stays a pure type.
type Workflow struct {
	ID          uuid.UUID           `json:"id"`
	Channel     enums.Channel       `json:"channel"`
	State       enums.WorkflowState `json:"state"`
	Items       []Item              `json:"items"`
	Recipient   string              `json:"recipient"`
	Reference   string              `json:"reference"`
	DiscountPct decimal.Decimal     `json:"discount_pct"`
	Cashier     string              `json:"cashier"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewWorkflow opens a run for a dispatch or transfer channel. Floor sales go
// through the POS checkout, never through a workflow.
func NewWorkflow(channel enums.Channel, cashier string) (*Workflow, error) {
	if !channel.IsValid() || channel == enums.ChannelSale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "channel must be a dispatch or transfer channel").
			WithDetails(map[string]string{"channel": string(channel)})
	}
	return &Workflow{
		ID:        uuid.New(),
		Channel:   channel,
		State:     enums.WorkflowStateScanning,
		Cashier:   cashier,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ScanItem is one resolved scan plus the warehouse capacity available to this
// workflow for that variant (current availability plus its own queued qty).
type ScanItem struct {
	ArticleID   string
	ArticleName string
	SizeCode    string
	SizeLabel   string
	UnitPrice   decimal.Decimal
	Capacity    int
}

// AddScan queues one unit. A repeat scan of the same variant increments the
// existing line, capped at the supplied capacity.
func (w *Workflow) AddScan(item ScanItem) error {
	if w.State != enums.WorkflowStateScanning {
		return w.stateConflict("scanning")
	}
	if item.Capacity <= 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "no warehouse stock available").
			WithDetails(map[string]string{"article_id": item.ArticleID, "size_code": item.SizeCode})
	}

	if line := w.find(item.ArticleID, item.SizeCode); line != nil {
		if line.Qty >= item.Capacity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "queued quantity already at warehouse capacity").
				WithDetails(map[string]string{"article_id": item.ArticleID, "size_code": item.SizeCode})
		}
		line.Qty++
		return nil
	}

	w.Items = append(w.Items, Item{
		ArticleID:   item.ArticleID,
		ArticleName: item.ArticleName,
		SizeCode:    item.SizeCode,
		SizeLabel:   item.SizeLabel,
		Qty:         1,
		UnitPrice:   item.UnitPrice,
	})
	return nil
}

// SetItemQty re-points one line at a new quantity during review. Capacity
// failures reject only this line; the rest of the queue is untouched. Zero
// removes the line.
func (w *Workflow) SetItemQty(index, qty, capacity int) error {
	if w.State != enums.WorkflowStateReviewing {
		return w.stateConflict("reviewing")
	}
	if index < 0 || index >= len(w.Items) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no such line in the queue")
	}
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if qty > capacity {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds warehouse stock").
			WithDetails(map[string]int{"requested": qty, "available": capacity})
	}
	if qty == 0 {
		w.Items = append(w.Items[:index], w.Items[index+1:]...)
		return nil
	}
	w.Items[index].Qty = qty
	return nil
}

// Advance moves to the next state. Leaving Scanning requires at least one
// queued item; Confirmed is reached only through Confirm, never Advance.
func (w *Workflow) Advance() error {
	switch w.State {
	case enums.WorkflowStateScanning:
		if len(w.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "scan at least one item before review")
		}
	case enums.WorkflowStateDetailsCapture:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "details capture completes via confirm")
	case enums.WorkflowStateConfirmed:
		return w.stateConflict("an open state")
	}
	w.State = w.State.Next()
	return nil
}

// Back steps one state backwards. Confirmed is terminal.
func (w *Workflow) Back() error {
	if w.State == enums.WorkflowStateConfirmed {
		return w.stateConflict("an open state")
	}
	if w.State == enums.WorkflowStateScanning {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first step")
	}
	w.State = w.State.Prev()
	return nil
}

// SetDetails captures recipient and reference. Transfers auto-generate both
// since stock only moves between the boutique's own locations.
func (w *Workflow) SetDetails(recipient, reference string, discountPct decimal.Decimal) error {
	if w.State != enums.WorkflowStateDetailsCapture {
		return w.stateConflict("details capture")
	}
	if discountPct.IsNegative() || discountPct.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}

	if w.Channel == enums.ChannelTransfer {
		w.Recipient = "store floor"
		w.Reference = fmt.Sprintf("TRF-%s", w.ID.String()[:8])
		w.DiscountPct = decimal.Zero
		return nil
	}

	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, w.Channel.DisplayName()+" recipient name is required")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}
	w.Recipient = recipient
	w.Reference = reference
	w.DiscountPct = discountPct
	return nil
}

func (w *Workflow) readyToConfirm() error {
	if w.State != enums.WorkflowStateDetailsCapture {
		return w.stateConflict("details capture")
	}
	if len(w.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot confirm an empty queue")
	}
	if w.Recipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "capture details before confirming")
	}
	return nil
}

// QueuedQty is the quantity already queued for one variant.
func (w *Workflow) QueuedQty(articleID, sizeCode string) int {
	if line := w.find(articleID, sizeCode); line != nil {
		return line.Qty
	}
	return 0
}

func (w *Workflow) find(articleID, sizeCode string) *Item {
	for i := range w.Items {
		if w.Items[i].ArticleID == articleID && w.Items[i].SizeCode == sizeCode {
			return &w.Items[i]
		}
	}
	return nil
}

func (w *Workflow) stateConflict(expected string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "workflow is not in "+expected).
		WithDetails(map[string]string{"state": w.State.String()})
}
