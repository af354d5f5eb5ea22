package semen

import (
	"context"
	"fmt"

	"rebanho/internal/core/apperror"
	appctx "rebanho/internal/core/context"
	"rebanho/internal/core/id"
	"rebanho/internal/core/tx"
	"rebanho/internal/domain/audit"
	"rebanho/pkg/logger"
)

// Repository persists lots and withdrawals. GetLotForUpdate must take a
// row lock so concurrent withdrawals against the same lot serialize.
type Repository interface {
	CreateLot(ctx context.Context, lot *Lot) error
	GetLot(ctx context.Context, lotID id.ID) (*Lot, error)
	GetLotForUpdate(ctx context.Context, lotID id.ID) (*Lot, error)
	LotsByDocument(ctx context.Context, documentNumber string) ([]Lot, error)
	DeleteLotsByDocument(ctx context.Context, documentNumber string) error
	ApplyWithdrawal(ctx context.Context, lotID id.ID, quantity int) error
	CreateWithdrawal(ctx context.Context, w *Withdrawal) error
	AvailableLots(ctx context.Context) ([]Lot, error)
	ListWithdrawals(ctx context.Context, lotID id.ID, limit, offset int) ([]Withdrawal, error)
}

type Service struct {
	repo      Repository
	txManager tx.Manager
	auditSink audit.Sink
}

func NewService(repo Repository, txManager tx.Manager, auditSink audit.Sink) *Service {
	return &Service{repo: repo, txManager: txManager, auditSink: auditSink}
}

// Replenish opens a new lot with all doses available. Inbound semen lines
// call this once per line; doses from different bulls never share a lot.
func (s *Service) Replenish(ctx context.Context, in ReplenishInput) (*Lot, error) {
	if in.Doses <= 0 {
		return nil, apperror.NewValidation("dose count must be positive")
	}
	if in.BullName == "" {
		return nil, apperror.NewValidation("bull name is required")
	}

	lot := &Lot{
		ID:             id.New(),
		BullName:       in.BullName,
		Supplier:       in.Supplier,
		DocumentNumber: in.DocumentNumber,
		PurchaseDate:   in.PurchaseDate,
		UnitPrice:      in.UnitPrice,
		Location:       in.Location,
		TotalDoses:     in.Doses,
		AvailableDoses: in.Doses,
		UsedDoses:      0,
	}
	if err := s.repo.CreateLot(ctx, lot); err != nil {
		return nil, err
	}
	logger.Info(ctx, "semen lot replenished",
		"lot_id", lot.ID,
		"bull", lot.BullName,
		"doses", lot.TotalDoses,
		"document_number", lot.DocumentNumber)
	return lot, nil
}

// ReplaceForDocument aligns the inventory with a document's current semen
// lines: the lots the document opened before are dropped and recreated
// from inputs. An empty inputs slice just removes them, which is how an
// edited document stops provisioning. A lot that already gave out doses
// blocks the whole replacement; replacing it would pull consumed doses
// off the books.
func (s *Service) ReplaceForDocument(ctx context.Context, documentNumber string, inputs []ReplenishInput) ([]Lot, error) {
	if documentNumber == "" {
		return nil, apperror.NewValidation("document number is required")
	}

	existing, err := s.repo.LotsByDocument(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].UsedDoses > 0 {
			return nil, apperror.NewConflict("semen lot already has withdrawals, document cannot be reprovisioned").
				WithDetail("lotId", existing[i].ID.String()).
				WithDetail("usedDoses", existing[i].UsedDoses)
		}
	}
	if len(existing) > 0 {
		if err := s.repo.DeleteLotsByDocument(ctx, documentNumber); err != nil {
			return nil, err
		}
	}

	lots := make([]Lot, 0, len(inputs))
	for _, in := range inputs {
		in.DocumentNumber = documentNumber
		lot, err := s.Replenish(ctx, in)
		if err != nil {
			return nil, err
		}
		lots = append(lots, *lot)
	}
	return lots, nil
}

// Withdraw pulls doses from the requested lots inside one transaction.
// Items are processed independently: an unknown lot or a shortfall marks
// that item rejected and the rest still apply. Only infrastructure errors
// roll the batch back.
func (s *Service) Withdraw(ctx context.Context, req WithdrawalRequest) ([]ItemResult, error) {
	if len(req.Items) == 0 {
		return nil, apperror.NewValidation("withdrawal needs at least one item")
	}

	results := make([]ItemResult, 0, len(req.Items))
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, item := range req.Items {
			res, err := s.withdrawOne(ctx, req, item)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordWithdrawal(ctx, req, results)
	return results, nil
}

// recordWithdrawal drops the audit entry for a committed batch. Best
// effort: the doses are already gone.
func (s *Service) recordWithdrawal(ctx context.Context, req WithdrawalRequest, results []ItemResult) {
	if s.auditSink == nil {
		return
	}
	applied := 0
	for i := range results {
		if results[i].Applied {
			applied++
		}
	}
	entry := audit.Entry{
		Operation:   audit.OpSemenWithdrawn,
		Description: fmt.Sprintf("withdrawal of %d item(s) for %s", len(results), req.Destination),
		Actor:       appctx.ActorName(ctx),
		Details: map[string]any{
			"destination":     req.Destination,
			"document_number": req.DocumentNumber,
			"items":           len(results),
			"applied":         applied,
		},
	}
	if err := s.auditSink.Record(ctx, entry); err != nil {
		logger.Error(ctx, "audit record failed", "operation", entry.Operation, "error", err)
	}
}

func (s *Service) withdrawOne(ctx context.Context, req WithdrawalRequest, item WithdrawalItem) (ItemResult, error) {
	res := ItemResult{LotID: item.LotID, Quantity: item.Quantity}

	if item.Quantity <= 0 {
		res.Code = apperror.CodeValidation
		res.Reason = "quantity must be positive"
		return res, nil
	}

	lot, err := s.repo.GetLotForUpdate(ctx, item.LotID)
	if err != nil {
		if apperror.IsNotFound(err) {
			res.Code = apperror.CodeNotFound
			res.Reason = "lot not found"
			return res, nil
		}
		return res, err
	}

	if lot.AvailableDoses < item.Quantity {
		shortfall := apperror.NewInsufficientDoses(lot.ID.String(), item.Quantity, lot.AvailableDoses)
		res.Code = shortfall.Code
		res.Reason = shortfall.Message
		res.Remaining = lot.AvailableDoses
		logger.Warn(ctx, "semen withdrawal rejected",
			"lot_id", lot.ID,
			"requested", item.Quantity,
			"available", lot.AvailableDoses)
		return res, nil
	}

	if err := s.repo.ApplyWithdrawal(ctx, lot.ID, item.Quantity); err != nil {
		return res, err
	}
	if err := s.repo.CreateWithdrawal(ctx, &Withdrawal{
		ID:             id.New(),
		LotID:          lot.ID,
		Quantity:       item.Quantity,
		Destination:    req.Destination,
		WithdrawalDate: req.WithdrawalDate,
		DocumentNumber: req.DocumentNumber,
	}); err != nil {
		return res, err
	}

	res.Applied = true
	res.Remaining = lot.AvailableDoses - item.Quantity
	return res, nil
}

// AvailableLots lists every lot that still has doses to give.
func (s *Service) AvailableLots(ctx context.Context) ([]Lot, error) {
	return s.repo.AvailableLots(ctx)
}

// GetLot returns a single lot.
func (s *Service) GetLot(ctx context.Context, lotID id.ID) (*Lot, error) {
	return s.repo.GetLot(ctx, lotID)
}

// Withdrawals pages through the usage history of one lot.
func (s *Service) Withdrawals(ctx context.Context, lotID id.ID, limit, offset int) ([]Withdrawal, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListWithdrawals(ctx, lotID, limit, offset)
}
