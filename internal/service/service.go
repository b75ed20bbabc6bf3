package service

import (
	"context"
	"fmt"
	"strings"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service is the consistency engine over the object store. The store
// offers single-call atomicity only, so every multi-entity operation
// here validates completely before the first write.
type Service struct {
	repo store.Repository
}

func New(repo store.Repository) *Service {
	return &Service{repo: repo}
}

// ---- suppliers ----

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierSaveRequest) (domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Supplier{}, fmt.Errorf("%w: supplier name is required", store.ErrValidation)
	}

	created, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		Name:  req.Name,
		Phone: strings.TrimSpace(req.Phone),
		Notes: strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return domain.Supplier{}, err
	}
	return *created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, req domain.SupplierSaveRequest) (domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Supplier{}, fmt.Errorf("%w: supplier name is required", store.ErrValidation)
	}

	updated, err := s.repo.UpdateSupplier(ctx, domain.Supplier{
		ID:    id,
		Name:  req.Name,
		Phone: strings.TrimSpace(req.Phone),
		Notes: strings.TrimSpace(req.Notes),
	})
	if err != nil {
		return domain.Supplier{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.repo.DeleteSupplier(ctx, id)
}

// ---- raw materials ----

func (s *Service) ListRawMaterials(ctx context.Context) ([]domain.RawMaterial, error) {
	return s.repo.ListRawMaterials(ctx)
}

// ListLowStockMaterials returns materials whose on-hand quantity fell
// below their minimum stock threshold.
func (s *Service) ListLowStockMaterials(ctx context.Context) ([]domain.RawMaterial, error) {
	materials, err := s.repo.ListRawMaterials(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]domain.RawMaterial, 0, 4)
	for _, material := range materials {
		if material.MinStock > 0 && material.QuantityOnHand < material.MinStock {
			low = append(low, material)
		}
	}
	return low, nil
}

func (s *Service) GetRawMaterial(ctx context.Context, id int64) (domain.RawMaterial, error) {
	material, err := s.repo.GetRawMaterial(ctx, id)
	if err != nil {
		return domain.RawMaterial{}, err
	}
	return *material, nil
}

func (s *Service) CreateRawMaterial(ctx context.Context, req domain.RawMaterialSaveRequest) (domain.RawMaterial, error) {
	material, err := rawMaterialFromRequest(req)
	if err != nil {
		return domain.RawMaterial{}, err
	}

	created, err := s.repo.CreateRawMaterial(ctx, material)
	if err != nil {
		return domain.RawMaterial{}, err
	}
	return *created, nil
}

func (s *Service) UpdateRawMaterial(ctx context.Context, id int64, req domain.RawMaterialSaveRequest) (domain.RawMaterial, error) {
	material, err := rawMaterialFromRequest(req)
	if err != nil {
		return domain.RawMaterial{}, err
	}
	material.ID = id

	updated, err := s.repo.UpdateRawMaterial(ctx, material)
	if err != nil {
		return domain.RawMaterial{}, err
	}
	return *updated, nil
}

func rawMaterialFromRequest(req domain.RawMaterialSaveRequest) (domain.RawMaterial, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.RawMaterial{}, fmt.Errorf("%w: material name is required", store.ErrValidation)
	}
	if req.QuantityOnHand < 0 || req.UnitCost < 0 || req.MinStock < 0 {
		return domain.RawMaterial{}, fmt.Errorf("%w: material quantities and costs must not be negative", store.ErrValidation)
	}

	return domain.RawMaterial{
		Name:           req.Name,
		Category:       strings.TrimSpace(req.Category),
		Unit:           strings.TrimSpace(req.Unit),
		QuantityOnHand: req.QuantityOnHand,
		UnitCost:       req.UnitCost,
		MinStock:       req.MinStock,
	}, nil
}

func (s *Service) DeleteRawMaterial(ctx context.Context, id int64) error {
	return s.repo.DeleteRawMaterial(ctx, id)
}

// ---- recipes ----

func (s *Service) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return s.repo.ListRecipes(ctx)
}

func (s *Service) GetRecipe(ctx context.Context, id int64) (domain.RecipeDetail, error) {
	recipe, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	lines, err := s.repo.ListRecipeLines(ctx, id)
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	return domain.RecipeDetail{Recipe: *recipe, Lines: lines}, nil
}

func (s *Service) CreateRecipe(ctx context.Context, req domain.RecipeSaveRequest) (domain.Recipe, error) {
	recipe, lines, err := s.buildRecipe(ctx, req)
	if err != nil {
		return domain.Recipe{}, err
	}

	created, err := s.repo.CreateRecipe(ctx, recipe, lines)
	if err != nil {
		return domain.Recipe{}, err
	}
	return *created, nil
}

func (s *Service) UpdateRecipe(ctx context.Context, id int64, req domain.RecipeSaveRequest) (domain.Recipe, error) {
	recipe, lines, err := s.buildRecipe(ctx, req)
	if err != nil {
		return domain.Recipe{}, err
	}
	recipe.ID = id

	updated, err := s.repo.UpdateRecipe(ctx, recipe, lines)
	if err != nil {
		return domain.Recipe{}, err
	}
	return *updated, nil
}

// buildRecipe validates the request, resolves every line's raw
// material, and derives the cost fields. Derived costs are recomputed
// on every save from the current material unit costs.
func (s *Service) buildRecipe(ctx context.Context, req domain.RecipeSaveRequest) (domain.Recipe, []domain.RecipeLine, error) {
	req.ProductName = strings.TrimSpace(req.ProductName)
	if req.ProductName == "" {
		return domain.Recipe{}, nil, fmt.Errorf("%w: recipe product name is required", store.ErrValidation)
	}
	if req.YieldUnits <= 0 {
		return domain.Recipe{}, nil, fmt.Errorf("%w: recipe yield must be positive", store.ErrValidation)
	}
	if req.MarginPercent < 0 {
		return domain.Recipe{}, nil, fmt.Errorf("%w: recipe margin must not be negative", store.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return domain.Recipe{}, nil, fmt.Errorf("%w: recipe needs at least one ingredient line", store.ErrValidation)
	}

	totalCost := 0.0
	lines := make([]domain.RecipeLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		if input.QuantityPerBatch <= 0 {
			return domain.Recipe{}, nil, fmt.Errorf("%w: ingredient quantity must be positive", store.ErrValidation)
		}
		material, err := s.repo.GetRawMaterial(ctx, input.RawMaterialID)
		if err != nil {
			return domain.Recipe{}, nil, fmt.Errorf("%w: raw material %d not found", store.ErrValidation, input.RawMaterialID)
		}
		totalCost += input.QuantityPerBatch * material.UnitCost
		lines = append(lines, domain.RecipeLine{
			RawMaterialID:    input.RawMaterialID,
			QuantityPerBatch: input.QuantityPerBatch,
		})
	}

	unitCost := totalCost / req.YieldUnits
	recipe := domain.Recipe{
		ProductName:    req.ProductName,
		Description:    strings.TrimSpace(req.Description),
		YieldUnits:     req.YieldUnits,
		MarginPercent:  req.MarginPercent,
		TotalCost:      totalCost,
		UnitCost:       unitCost,
		SuggestedPrice: suggestedPrice(unitCost, req.MarginPercent),
	}
	return recipe, lines, nil
}

// suggestedPrice applies the margin-on-price formula. A margin of 100
// or more would divide by zero or flip the sign, so those inputs (and
// a non-positive cost) yield no suggestion.
func suggestedPrice(unitCost float64, marginPercent float64) float64 {
	if unitCost <= 0 || marginPercent >= 100 {
		return 0
	}
	return unitCost / (1 - marginPercent/100)
}

func (s *Service) DeleteRecipe(ctx context.Context, id int64) error {
	return s.repo.DeleteRecipe(ctx, id)
}

// ---- finished products ----

func (s *Service) ListProducts(ctx context.Context) ([]domain.FinishedProduct, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (domain.FinishedProduct, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.FinishedProduct{}, err
	}
	return *product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req domain.ProductUpdateRequest) (domain.FinishedProduct, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.FinishedProduct{}, err
	}

	if req.SalePrice != nil {
		if *req.SalePrice < 0 {
			return domain.FinishedProduct{}, fmt.Errorf("%w: sale price must not be negative", store.ErrValidation)
		}
		product.SalePrice = *req.SalePrice
	}

	updated, err := s.repo.UpdateProduct(ctx, *product)
	if err != nil {
		return domain.FinishedProduct{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ---- dashboard ----

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	pending := 0
	for _, order := range orders {
		if order.Status == domain.OrderStatusPending {
			pending++
		}
	}

	low, err := s.ListLowStockMaterials(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	finishedUnits := 0
	for _, product := range products {
		finishedUnits += product.QuantityOnHand
	}

	ledger, err := s.LedgerSummary(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	return domain.DashboardSummary{
		PendingOrders:     pending,
		LowStockMaterials: low,
		FinishedUnits:     finishedUnits,
		Ledger:            ledger,
	}, nil
}
