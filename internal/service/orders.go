package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

// ListOrders optionally filters by status and case-insensitive
// customer substring.
func (s *Service) ListOrders(ctx context.Context, status string, customer string) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" && customer == "" {
		return orders, nil
	}

	customer = strings.ToLower(strings.TrimSpace(customer))
	filtered := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if status != "" && string(order.Status) != status {
			continue
		}
		if customer != "" && !strings.Contains(strings.ToLower(order.CustomerName), customer) {
			continue
		}
		filtered = append(filtered, order)
	}
	return filtered, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.OrderDetail, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	lines, err := s.repo.ListOrderLines(ctx, id)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	return domain.OrderDetail{Order: *order, Lines: lines}, nil
}

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderSaveRequest) (domain.Order, error) {
	order, lines, err := s.buildOrder(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatusPending

	created, err := s.repo.CreateOrder(ctx, order, lines)
	if err != nil {
		return domain.Order{}, err
	}
	return *created, nil
}

// UpdateOrder replaces the order header and line set. Only pending
// orders are editable; anything after confirmation already moved stock
// and money.
func (s *Service) UpdateOrder(ctx context.Context, id int64, req domain.OrderSaveRequest) (domain.Order, error) {
	existing, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if existing.Status != domain.OrderStatusPending {
		return domain.Order{}, fmt.Errorf("%w: only pending orders can be edited", store.ErrInvalidTransition)
	}

	order, lines, err := s.buildOrder(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = id
	order.Status = existing.Status

	updated, err := s.repo.UpdateOrder(ctx, order, lines)
	if err != nil {
		return domain.Order{}, err
	}
	return *updated, nil
}

// buildOrder validates the request and resolves every line's product,
// snapshotting the product name and totalling the order value.
func (s *Service) buildOrder(ctx context.Context, req domain.OrderSaveRequest) (domain.Order, []domain.OrderLine, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return domain.Order{}, nil, fmt.Errorf("%w: customer name is required", store.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return domain.Order{}, nil, fmt.Errorf("%w: order needs at least one line", store.ErrValidation)
	}

	total := 0.0
	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		if input.Quantity <= 0 {
			return domain.Order{}, nil, fmt.Errorf("%w: line quantity must be positive", store.ErrValidation)
		}
		if input.UnitPrice < 0 {
			return domain.Order{}, nil, fmt.Errorf("%w: line unit price must not be negative", store.ErrValidation)
		}
		product, err := s.repo.GetProduct(ctx, input.ProductID)
		if err != nil {
			return domain.Order{}, nil, fmt.Errorf("%w: product %d not found", store.ErrValidation, input.ProductID)
		}
		total += float64(input.Quantity) * input.UnitPrice
		lines = append(lines, domain.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
		})
	}

	// A zero total could never book its sale entry on confirmation,
	// so it is rejected here rather than after stock has moved.
	if total <= 0 {
		return domain.Order{}, nil, fmt.Errorf("%w: order total must be positive", store.ErrValidation)
	}

	order := domain.Order{
		CustomerName:  req.CustomerName,
		OrderDate:     strings.TrimSpace(req.OrderDate),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		TotalValue:    total,
	}
	return order, lines, nil
}

// ConfirmOrder deducts finished-goods stock for every line and books
// the sale as a single ledger inflow carrying the order id. All lines
// are stock-checked before any deduction.
func (s *Service) ConfirmOrder(ctx context.Context, id int64) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusConfirmed) {
		return domain.Order{}, fmt.Errorf("%w: cannot confirm a %s order", store.ErrInvalidTransition, order.Status)
	}
	// Guards orders that predate the create-time total check (old
	// backups); the sale entry below requires a positive value and
	// must not fail after stock has been deducted.
	if order.TotalValue <= 0 {
		return domain.Order{}, fmt.Errorf("%w: order total must be positive", store.ErrValidation)
	}

	lines, err := s.repo.ListOrderLines(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}

	for _, line := range lines {
		product, err := s.repo.GetProduct(ctx, line.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("%w: product %d no longer exists", store.ErrValidation, line.ProductID)
		}
		if product.QuantityOnHand < line.Quantity {
			return domain.Order{}, fmt.Errorf("%w: %s (need %d, have %d)",
				store.ErrInsufficientStock, product.Name, line.Quantity, product.QuantityOnHand)
		}
	}

	for _, line := range lines {
		if _, err := s.adjustFinishedGoods(ctx, line.ProductID, -line.Quantity); err != nil {
			return domain.Order{}, fmt.Errorf("confirm order %d: %w", id, err)
		}
	}

	if _, err := s.repo.CreateLedgerEntry(ctx, domain.LedgerEntry{
		Type:        domain.EntryTypeInflow,
		Category:    "sale",
		Description: fmt.Sprintf("Order #%d - %s", order.ID, order.CustomerName),
		Value:       order.TotalValue,
		Origin:      domain.OriginOrder,
		OrderID:     order.ID,
	}); err != nil {
		log.Printf("[service] WARN: order=%d confirmed but sale ledger entry failed: %v", id, err)
		return domain.Order{}, fmt.Errorf("confirm order %d: %w", id, err)
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, id, domain.OrderStatusConfirmed)
	if err != nil {
		return domain.Order{}, err
	}
	return *updated, nil
}

// DeliverOrder is a status-only transition.
func (s *Service) DeliverOrder(ctx context.Context, id int64) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusDelivered) {
		return domain.Order{}, fmt.Errorf("%w: cannot deliver a %s order", store.ErrInvalidTransition, order.Status)
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, id, domain.OrderStatusDelivered)
	if err != nil {
		return domain.Order{}, err
	}
	return *updated, nil
}

// CancelOrder compensates a confirmed order: every stock deduction is
// reversed, the sale entry is removed, and an equal-value reversal
// outflow is appended so the money movement stays on the record.
// Cancelling a pending order is status-only.
func (s *Service) CancelOrder(ctx context.Context, id int64) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
		return domain.Order{}, fmt.Errorf("%w: cannot cancel a %s order", store.ErrInvalidTransition, order.Status)
	}

	if order.Status == domain.OrderStatusConfirmed {
		lines, err := s.repo.ListOrderLines(ctx, id)
		if err != nil {
			return domain.Order{}, err
		}
		for _, line := range lines {
			if _, err := s.adjustFinishedGoods(ctx, line.ProductID, line.Quantity); err != nil {
				// Product deleted since confirmation; the units cannot
				// go anywhere, so log and carry on with the rest.
				log.Printf("[service] WARN: cancel order=%d: could not restock product %d: %v", id, line.ProductID, err)
			}
		}

		if entry, err := s.repo.FindOrderLedgerEntry(ctx, id); err == nil {
			if err := s.repo.DeleteLedgerEntry(ctx, entry.ID); err != nil {
				log.Printf("[service] WARN: cancel order=%d: could not remove sale entry %d: %v", id, entry.ID, err)
			}
		}

		if _, err := s.repo.CreateLedgerEntry(ctx, domain.LedgerEntry{
			Type:        domain.EntryTypeOutflow,
			Category:    "reversal",
			Description: fmt.Sprintf("Cancellation of order #%d - %s", order.ID, order.CustomerName),
			Value:       order.TotalValue,
			Origin:      domain.OriginOrderReversal,
			OrderID:     order.ID,
		}); err != nil {
			log.Printf("[service] WARN: cancel order=%d: reversal ledger entry failed: %v", id, err)
		}
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, id, domain.OrderStatusCancelled)
	if err != nil {
		return domain.Order{}, err
	}
	return *updated, nil
}

// DeleteOrder removes an order and its lines. Confirmed orders hold
// live stock and ledger effects and must be cancelled first.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderStatusConfirmed {
		return fmt.Errorf("%w: cancel the order before deleting it", store.ErrInvalidTransition)
	}
	return s.repo.DeleteOrder(ctx, id)
}
