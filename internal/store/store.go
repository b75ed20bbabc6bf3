package store

import (
	"context"
	"errors"

	"saboaria/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Repository is the persistent object store underneath the engine.
// Every call is atomic on its own; cross-table atomicity is NOT
// offered, so multi-entity operations in the service layer must
// validate fully before mutating anything.
type Repository interface {
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	ListRawMaterials(ctx context.Context) ([]domain.RawMaterial, error)
	GetRawMaterial(ctx context.Context, id int64) (*domain.RawMaterial, error)
	CreateRawMaterial(ctx context.Context, material domain.RawMaterial) (*domain.RawMaterial, error)
	UpdateRawMaterial(ctx context.Context, material domain.RawMaterial) (*domain.RawMaterial, error)
	DeleteRawMaterial(ctx context.Context, id int64) error

	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	CreateRecipe(ctx context.Context, recipe domain.Recipe, lines []domain.RecipeLine) (*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe domain.Recipe, lines []domain.RecipeLine) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
	ListRecipeLines(ctx context.Context, recipeID int64) ([]domain.RecipeLine, error)

	ListProductionBatches(ctx context.Context) ([]domain.ProductionBatch, error)
	CreateProductionBatch(ctx context.Context, batch domain.ProductionBatch) (*domain.ProductionBatch, error)

	ListProducts(ctx context.Context) ([]domain.FinishedProduct, error)
	GetProduct(ctx context.Context, id int64) (*domain.FinishedProduct, error)
	FindProductByName(ctx context.Context, name string) (*domain.FinishedProduct, error)
	CreateProduct(ctx context.Context, product domain.FinishedProduct) (*domain.FinishedProduct, error)
	UpdateProduct(ctx context.Context, product domain.FinishedProduct) (*domain.FinishedProduct, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	ListOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error)

	ListLedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error)
	CreateLedgerEntry(ctx context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, id int64) error
	GetLedgerEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	FindOrderLedgerEntry(ctx context.Context, orderID int64) (*domain.LedgerEntry, error)

	ListLosses(ctx context.Context) ([]domain.Loss, error)
	CreateLoss(ctx context.Context, loss domain.Loss) (*domain.Loss, error)

	ExportAll(ctx context.Context) (domain.BackupDocument, error)
	ImportAll(ctx context.Context, doc domain.BackupDocument) error
	Counts(ctx context.Context) (map[string]int, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

// MutationObserver is notified after any create/update/delete commits.
// The durability layer registers one to schedule snapshots.
type MutationObserver interface {
	StoreMutated()
}

// ObservableRepository is implemented by stores that can report
// mutations to a durability layer.
type ObservableRepository interface {
	Repository
	SetMutationObserver(observer MutationObserver)
}
