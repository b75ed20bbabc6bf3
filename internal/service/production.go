package service

import (
	"context"
	"fmt"
	"log"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

func (s *Service) ListProductionBatches(ctx context.Context) ([]domain.ProductionBatch, error) {
	return s.repo.ListProductionBatches(ctx)
}

// Produce runs one production batch: raw materials out, finished goods
// in, plus an immutable batch record and a production-cost ledger
// entry. All validation happens before the first write. After the raw
// materials are deducted the remaining steps are attempted even if one
// fails, so a deduction is never left without its finished-goods
// increase; a mid-flight store failure is logged with entity ids for
// manual reconciliation and surfaced to the caller.
func (s *Service) Produce(ctx context.Context, req domain.ProduceRequest) (domain.ProduceResponse, error) {
	if req.BatchSize <= 0 {
		return domain.ProduceResponse{}, fmt.Errorf("%w: batch size must be positive", store.ErrValidation)
	}

	recipe, err := s.repo.GetRecipe(ctx, req.RecipeID)
	if err != nil {
		return domain.ProduceResponse{}, err
	}
	lines, err := s.repo.ListRecipeLines(ctx, recipe.ID)
	if err != nil {
		return domain.ProduceResponse{}, err
	}
	if len(lines) == 0 {
		return domain.ProduceResponse{}, fmt.Errorf("%w: recipe %d has no ingredient lines", store.ErrValidation, recipe.ID)
	}

	if err := s.deductRawMaterials(ctx, *recipe, lines, req.BatchSize); err != nil {
		return domain.ProduceResponse{}, err
	}

	batchCost := recipe.UnitCost * float64(req.BatchSize)

	var firstErr error
	product, err := s.increaseFinishedGoods(ctx, recipe.ProductName, req.BatchSize, batchCost, recipe.SuggestedPrice)
	if err != nil {
		firstErr = err
		log.Printf("[service] WARN: production recipe=%d: finished goods increase failed after deduction, reconcile manually: %v", recipe.ID, err)
	}

	batch, err := s.repo.CreateProductionBatch(ctx, domain.ProductionBatch{
		RecipeID:         recipe.ID,
		RecipeName:       recipe.ProductName,
		QuantityProduced: req.BatchSize,
		TotalCost:        batchCost,
	})
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		log.Printf("[service] WARN: production recipe=%d: batch record failed: %v", recipe.ID, err)
	}

	if _, err := s.repo.CreateLedgerEntry(ctx, domain.LedgerEntry{
		Type:        domain.EntryTypeOutflow,
		Category:    "production",
		Description: fmt.Sprintf("Production of %d x %s", req.BatchSize, recipe.ProductName),
		Value:       batchCost,
		Origin:      domain.OriginProduction,
	}); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		log.Printf("[service] WARN: production recipe=%d: ledger entry failed: %v", recipe.ID, err)
	}

	if firstErr != nil {
		return domain.ProduceResponse{}, fmt.Errorf("production incomplete: %w", firstErr)
	}

	resp := domain.ProduceResponse{Product: product}
	if batch != nil {
		resp.Batch = *batch
	}
	return resp, nil
}
