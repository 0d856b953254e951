package shifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

type Service interface {
	// Start opens a work window for the cashier. One open session per
	// cashier; starting again before ending is a conflict.
	Start(ctx context.Context, cashier string) (*models.ShiftSession, error)
	// End snapshots the session's sales into an immutable ShiftRecord and
	// destroys the live session, both in one transaction.
	End(ctx context.Context, cashier string) (*models.ShiftRecord, error)
	Current(ctx context.Context, cashier string) (*models.ShiftSession, error)
	Records(ctx context.Context, params pagination.Params) ([]models.ShiftRecord, error)
}

type service struct {
	client *db.Client
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(client *db.Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, logg: logg, now: time.Now}, nil
}

func (s *service) Start(ctx context.Context, cashier string) (*models.ShiftSession, error) {
	if cashier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier is required")
	}

	existing, err := s.Current(ctx, cashier)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cashier already has an open shift").
			WithDetails(map[string]string{"cashier": cashier, "started_at": existing.StartedAt.Format(time.RFC3339)})
	}

	startedAt := s.now().UTC()
	moment := ClassifyMoment(startedAt)
	session := &models.ShiftSession{
		Cashier:      cashier,
		Slot:         moment.Slot,
		BusinessDate: moment.BusinessDate,
		StartedAt:    startedAt,
	}
	if err := s.client.DB().WithContext(ctx).Create(session).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "starting shift")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cashier": cashier,
		"slot":    session.Slot.String(),
	}), "shift started")
	return session, nil
}

func (s *service) Current(ctx context.Context, cashier string) (*models.ShiftSession, error) {
	var session models.ShiftSession
	err := s.client.DB().WithContext(ctx).First(&session, "cashier = ?", cashier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shift session")
	}
	return &session, nil
}

func (s *service) End(ctx context.Context, cashier string) (*models.ShiftRecord, error) {
	session, err := s.Current(ctx, cashier)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no open shift for cashier").
			WithDetails(map[string]string{"cashier": cashier})
	}

	endedAt := s.now().UTC()
	record := &models.ShiftRecord{
		Cashier:      session.Cashier,
		Slot:         session.Slot,
		BusinessDate: session.BusinessDate,
		StartedAt:    session.StartedAt,
		EndedAt:      endedAt,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		// Single point-in-time read inside the transaction; sales landing
		// after this commit belong to the next shift.
		var rows []models.Transaction
		err := tx.WithContext(ctx).
			Where("cashier = ? AND created_at >= ?", session.Cashier, session.StartedAt).
			Find(&rows).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading shift sales")
		}

		for _, row := range rows {
			record.TotalSales = record.TotalSales.Add(row.Total)
			switch row.PaymentMethod {
			case enums.PaymentMethodCash:
				record.CashSales = record.CashSales.Add(row.AmountPaid)
			case enums.PaymentMethodCard:
				record.CardSales = record.CardSales.Add(row.AmountPaid)
			}
		}
		record.TransactionCount = len(rows)

		if err := tx.WithContext(ctx).Create(record).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing shift record")
		}
		err = tx.WithContext(ctx).Delete(&models.ShiftSession{}, "id = ?", session.ID).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing shift session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"cashier":      cashier,
		"slot":         record.Slot.String(),
		"total_sales":  record.TotalSales.String(),
		"transactions": record.TransactionCount,
	}), "shift ended")
	return record, nil
}

func (s *service) Records(ctx context.Context, params pagination.Params) ([]models.ShiftRecord, error) {
	q := s.client.DB().WithContext(ctx).Model(&models.ShiftRecord{})
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var records []models.ShiftRecord
	err := q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing shift records")
	}
	return records, nil
}
