package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

// deductRawMaterials consumes the materials a production run needs.
// Required quantity per line scales the recipe line from the recipe's
// yield to the requested batch size. Every line is checked against
// on-hand stock before any material is written; a shortfall anywhere
// aborts the whole deduction naming the first short material.
func (s *Service) deductRawMaterials(ctx context.Context, recipe domain.Recipe, lines []domain.RecipeLine, batchSize int) error {
	type plannedDeduction struct {
		material domain.RawMaterial
		required float64
	}

	planned := make([]plannedDeduction, 0, len(lines))
	for _, line := range lines {
		material, err := s.repo.GetRawMaterial(ctx, line.RawMaterialID)
		if err != nil {
			return fmt.Errorf("%w: recipe line references missing raw material %d", store.ErrValidation, line.RawMaterialID)
		}
		required := line.QuantityPerBatch / recipe.YieldUnits * float64(batchSize)
		if material.QuantityOnHand < required {
			return fmt.Errorf("%w: %s (need %.3f %s, have %.3f)",
				store.ErrInsufficientStock, material.Name, required, material.Unit, material.QuantityOnHand)
		}
		planned = append(planned, plannedDeduction{material: *material, required: required})
	}

	for _, p := range planned {
		p.material.QuantityOnHand -= p.required
		if _, err := s.repo.UpdateRawMaterial(ctx, p.material); err != nil {
			return fmt.Errorf("deduct raw material %d: %w", p.material.ID, err)
		}
	}
	return nil
}

// increaseFinishedGoods adds a production batch to the finished-goods
// inventory. The product row is created lazily on first production of
// a name; thereafter the unit cost is folded in as a weighted average:
//
//	newCost = (oldQty*oldCost + batchCost) / (oldQty + qty)
func (s *Service) increaseFinishedGoods(ctx context.Context, name string, qty int, batchCost float64, salePrice float64) (domain.FinishedProduct, error) {
	name = strings.TrimSpace(name)
	if name == "" || qty <= 0 {
		return domain.FinishedProduct{}, fmt.Errorf("%w: product name and positive quantity are required", store.ErrValidation)
	}

	existing, err := s.repo.FindProductByName(ctx, name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.FinishedProduct{}, err
		}
		created, err := s.repo.CreateProduct(ctx, domain.FinishedProduct{
			Name:                name,
			QuantityOnHand:      qty,
			WeightedAverageCost: batchCost / float64(qty),
			SalePrice:           salePrice,
		})
		if err != nil {
			return domain.FinishedProduct{}, err
		}
		return *created, nil
	}

	oldQty := existing.QuantityOnHand
	existing.WeightedAverageCost = (float64(oldQty)*existing.WeightedAverageCost + batchCost) / float64(oldQty+qty)
	existing.QuantityOnHand = oldQty + qty

	updated, err := s.repo.UpdateProduct(ctx, *existing)
	if err != nil {
		return domain.FinishedProduct{}, err
	}
	return *updated, nil
}

// adjustFinishedGoods moves finished-goods quantity by delta. Sales,
// losses, and cancellation reversals all come through here. The
// weighted average cost is never touched: only production changes it.
func (s *Service) adjustFinishedGoods(ctx context.Context, productID int64, delta int) (domain.FinishedProduct, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.FinishedProduct{}, err
	}

	next := product.QuantityOnHand + delta
	if next < 0 {
		return domain.FinishedProduct{}, fmt.Errorf("%w: %s (need %d, have %d)",
			store.ErrInsufficientStock, product.Name, -delta, product.QuantityOnHand)
	}
	product.QuantityOnHand = next

	updated, err := s.repo.UpdateProduct(ctx, *product)
	if err != nil {
		return domain.FinishedProduct{}, err
	}
	return *updated, nil
}
