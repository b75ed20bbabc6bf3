package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

func (s *Service) ListLedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	return s.repo.ListLedgerEntries(ctx)
}

func (s *Service) LedgerSummary(ctx context.Context) (domain.LedgerSummary, error) {
	entries, err := s.repo.ListLedgerEntries(ctx)
	if err != nil {
		return domain.LedgerSummary{}, err
	}

	var summary domain.LedgerSummary
	for _, entry := range entries {
		switch entry.Type {
		case domain.EntryTypeInflow:
			summary.TotalInflow += entry.Value
		case domain.EntryTypeOutflow:
			summary.TotalOutflow += entry.Value
		}
	}
	summary.Balance = summary.TotalInflow - summary.TotalOutflow
	return summary, nil
}

func (s *Service) CreateManualLedgerEntry(ctx context.Context, req domain.LedgerEntryCreateRequest) (domain.LedgerEntry, error) {
	if req.Type != domain.EntryTypeInflow && req.Type != domain.EntryTypeOutflow {
		return domain.LedgerEntry{}, fmt.Errorf("%w: entry type must be inflow or outflow", store.ErrValidation)
	}
	if req.Value <= 0 {
		return domain.LedgerEntry{}, fmt.Errorf("%w: entry value must be positive", store.ErrValidation)
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("%w: entry date must be YYYY-MM-DD", store.ErrValidation)
		}
		date = parsed
	}

	created, err := s.repo.CreateLedgerEntry(ctx, domain.LedgerEntry{
		Type:        req.Type,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Value:       req.Value,
		Date:        date,
		Origin:      domain.OriginManual,
	})
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return *created, nil
}

// DeleteLedgerEntry removes a manual entry. Engine-written entries
// (sales, production, losses, reversals) are owned by their operations
// and cannot be deleted by hand.
func (s *Service) DeleteLedgerEntry(ctx context.Context, id int64) error {
	entry, err := s.repo.GetLedgerEntry(ctx, id)
	if err != nil {
		return err
	}
	if entry.Origin != domain.OriginManual {
		return fmt.Errorf("%w: only manual entries can be deleted", store.ErrValidation)
	}
	return s.repo.DeleteLedgerEntry(ctx, id)
}

// ---- losses ----

func (s *Service) ListLosses(ctx context.Context) ([]domain.Loss, error) {
	return s.repo.ListLosses(ctx)
}

// RecordLoss writes off finished goods: stock down, a loss record, and
// a ledger outflow valued at the product's current weighted average
// cost. The quantity check rides on adjustFinishedGoods.
func (s *Service) RecordLoss(ctx context.Context, req domain.LossCreateRequest) (domain.Loss, error) {
	if req.Quantity <= 0 {
		return domain.Loss{}, fmt.Errorf("%w: loss quantity must be positive", store.ErrValidation)
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Loss{}, err
	}

	if _, err := s.adjustFinishedGoods(ctx, product.ID, -req.Quantity); err != nil {
		return domain.Loss{}, err
	}

	value := float64(req.Quantity) * product.WeightedAverageCost
	loss, err := s.repo.CreateLoss(ctx, domain.Loss{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		Category:    strings.TrimSpace(req.Category),
		Notes:       strings.TrimSpace(req.Notes),
		Value:       value,
	})
	if err != nil {
		return domain.Loss{}, fmt.Errorf("record loss for product %d: %w", product.ID, err)
	}

	if value > 0 {
		if _, err := s.repo.CreateLedgerEntry(ctx, domain.LedgerEntry{
			Type:        domain.EntryTypeOutflow,
			Category:    "loss",
			Description: fmt.Sprintf("Loss of %d x %s", req.Quantity, product.Name),
			Value:       value,
			Origin:      domain.OriginLoss,
		}); err != nil {
			return domain.Loss{}, fmt.Errorf("record loss for product %d: %w", product.ID, err)
		}
	}

	return *loss, nil
}
