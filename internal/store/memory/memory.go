package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
	"saboaria/backend/internal/xid"
)

// Table names, in the order they appear in a backup document.
const (
	TableSuppliers         = "suppliers"
	TableRawMaterials      = "raw_materials"
	TableRecipes           = "recipes"
	TableRecipeLines       = "recipe_lines"
	TableProductionBatches = "production_batches"
	TableProducts          = "products"
	TableOrders            = "orders"
	TableOrderLines        = "order_lines"
	TableLedgerEntries     = "ledger_entries"
	TableLosses            = "losses"
)

const backupFormatVersion = 3

// Store is the primary object store: per-entity tables with
// auto-incrementing int64 keys, guarded by a single RWMutex. Each
// exported method is atomic on its own; callers must not assume
// cross-table atomicity.
type Store struct {
	mu                sync.RWMutex
	seq               map[string]int64
	suppliers         map[int64]domain.Supplier
	rawMaterials      map[int64]domain.RawMaterial
	recipes           map[int64]domain.Recipe
	recipeLines       map[int64]domain.RecipeLine
	productionBatches map[int64]domain.ProductionBatch
	products          map[int64]domain.FinishedProduct
	orders            map[int64]domain.Order
	orderLines        map[int64]domain.OrderLine
	ledgerEntries     map[int64]domain.LedgerEntry
	losses            map[int64]domain.Loss
	usersByUsername   map[string]domain.UserAccount
	observer          store.MutationObserver
}

func New() *Store {
	return &Store{
		seq:               make(map[string]int64),
		suppliers:         make(map[int64]domain.Supplier),
		rawMaterials:      make(map[int64]domain.RawMaterial),
		recipes:           make(map[int64]domain.Recipe),
		recipeLines:       make(map[int64]domain.RecipeLine),
		productionBatches: make(map[int64]domain.ProductionBatch),
		products:          make(map[int64]domain.FinishedProduct),
		orders:            make(map[int64]domain.Order),
		orderLines:        make(map[int64]domain.OrderLine),
		ledgerEntries:     make(map[int64]domain.LedgerEntry),
		losses:            make(map[int64]domain.Loss),
		usersByUsername:   seedUsers(),
	}
}

// seedUsers builds the initial owner account. The password is read
// from SEED_OWNER_PASSWORD; if unset, a hardcoded dev default is used
// with a warning printed to stdout.
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD to override.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(ownerPwd), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}

	return map[string]domain.UserAccount{
		"owner": {
			Username:  "owner",
			Password:  string(hash),
			Role:      "owner",
			Active:    true,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *Store) SetMutationObserver(observer store.MutationObserver) {
	s.mu.Lock()
	s.observer = observer
	s.mu.Unlock()
}

// notify runs after the write lock is released so the observer can
// trigger an export without deadlocking.
func (s *Store) notify() {
	s.mu.RLock()
	observer := s.observer
	s.mu.RUnlock()
	if observer != nil {
		observer.StoreMutated()
	}
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// bumpSeq keeps the auto-increment sequence ahead of imported ids so
// inserts after a restore never collide.
func (s *Store) bumpSeq(table string, id int64) {
	if s.seq[table] < id {
		s.seq[table] = id
	}
}

func stampCreatedAt(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at
}

// ---- suppliers ----

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliers))
	for _, supplier := range s.suppliers {
		suppliers = append(suppliers, supplier)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return suppliers, nil
}

func (s *Store) GetSupplier(_ context.Context, id int64) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := supplier
	return &copied, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	supplier.ID = s.nextID(TableSuppliers)
	supplier.CreatedAt = stampCreatedAt(supplier.CreatedAt)
	s.suppliers[supplier.ID] = supplier
	s.mu.Unlock()
	s.notify()

	created := supplier
	return &created, nil
}

func (s *Store) UpdateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	existing, ok := s.suppliers[supplier.ID]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	supplier.CreatedAt = existing.CreatedAt
	s.suppliers[supplier.ID] = supplier
	s.mu.Unlock()
	s.notify()

	updated := supplier
	return &updated, nil
}

func (s *Store) DeleteSupplier(_ context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.suppliers[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.suppliers, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ---- raw materials ----

func (s *Store) ListRawMaterials(_ context.Context) ([]domain.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	materials := make([]domain.RawMaterial, 0, len(s.rawMaterials))
	for _, material := range s.rawMaterials {
		materials = append(materials, material)
	}
	slices.SortFunc(materials, func(a, b domain.RawMaterial) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return materials, nil
}

func (s *Store) GetRawMaterial(_ context.Context, id int64) (*domain.RawMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	material, ok := s.rawMaterials[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := material
	return &copied, nil
}

func (s *Store) CreateRawMaterial(_ context.Context, material domain.RawMaterial) (*domain.RawMaterial, error) {
	if material.Name == "" || material.QuantityOnHand < 0 || material.UnitCost < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	material.ID = s.nextID(TableRawMaterials)
	material.CreatedAt = stampCreatedAt(material.CreatedAt)
	s.rawMaterials[material.ID] = material
	s.mu.Unlock()
	s.notify()

	created := material
	return &created, nil
}

func (s *Store) UpdateRawMaterial(_ context.Context, material domain.RawMaterial) (*domain.RawMaterial, error) {
	if material.Name == "" || material.QuantityOnHand < 0 || material.UnitCost < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	existing, ok := s.rawMaterials[material.ID]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	material.CreatedAt = existing.CreatedAt
	s.rawMaterials[material.ID] = material
	s.mu.Unlock()
	s.notify()

	updated := material
	return &updated, nil
}

func (s *Store) DeleteRawMaterial(_ context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.rawMaterials[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.rawMaterials, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ---- recipes ----

func (s *Store) ListRecipes(_ context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]domain.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		recipes = append(recipes, recipe)
	}
	slices.SortFunc(recipes, func(a, b domain.Recipe) int {
		return strings.Compare(strings.ToLower(a.ProductName), strings.ToLower(b.ProductName))
	})
	return recipes, nil
}

func (s *Store) GetRecipe(_ context.Context, id int64) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.recipes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := recipe
	return &copied, nil
}

func (s *Store) CreateRecipe(_ context.Context, recipe domain.Recipe, lines []domain.RecipeLine) (*domain.Recipe, error) {
	if recipe.ProductName == "" || recipe.YieldUnits <= 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	recipe.ID = s.nextID(TableRecipes)
	recipe.CreatedAt = stampCreatedAt(recipe.CreatedAt)
	s.recipes[recipe.ID] = recipe
	for _, line := range lines {
		line.ID = s.nextID(TableRecipeLines)
		line.RecipeID = recipe.ID
		s.recipeLines[line.ID] = line
	}
	s.mu.Unlock()
	s.notify()

	created := recipe
	return &created, nil
}

// UpdateRecipe replaces the line set wholesale alongside the recipe
// row itself.
func (s *Store) UpdateRecipe(_ context.Context, recipe domain.Recipe, lines []domain.RecipeLine) (*domain.Recipe, error) {
	if recipe.ProductName == "" || recipe.YieldUnits <= 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	existing, ok := s.recipes[recipe.ID]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	recipe.CreatedAt = existing.CreatedAt
	s.recipes[recipe.ID] = recipe
	s.deleteRecipeLinesLocked(recipe.ID)
	for _, line := range lines {
		line.ID = s.nextID(TableRecipeLines)
		line.RecipeID = recipe.ID
		s.recipeLines[line.ID] = line
	}
	s.mu.Unlock()
	s.notify()

	updated := recipe
	return &updated, nil
}

func (s *Store) DeleteRecipe(_ context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.recipes[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.recipes, id)
	s.deleteRecipeLinesLocked(id)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) deleteRecipeLinesLocked(recipeID int64) {
	for lineID, line := range s.recipeLines {
		if line.RecipeID == recipeID {
			delete(s.recipeLines, lineID)
		}
	}
}

// ListRecipeLines is the secondary-index lookup by recipe id.
func (s *Store) ListRecipeLines(_ context.Context, recipeID int64) ([]domain.RecipeLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]domain.RecipeLine, 0, 8)
	for _, line := range s.recipeLines {
		if line.RecipeID == recipeID {
			lines = append(lines, line)
		}
	}
	slices.SortFunc(lines, func(a, b domain.RecipeLine) int {
		return int(a.ID - b.ID)
	})
	return lines, nil
}

// ---- production batches ----

func (s *Store) ListProductionBatches(_ context.Context) ([]domain.ProductionBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batches := make([]domain.ProductionBatch, 0, len(s.productionBatches))
	for _, batch := range s.productionBatches {
		batches = append(batches, batch)
	}
	slices.SortFunc(batches, func(a, b domain.ProductionBatch) int {
		return int(b.ID - a.ID)
	})
	return batches, nil
}

func (s *Store) CreateProductionBatch(_ context.Context, batch domain.ProductionBatch) (*domain.ProductionBatch, error) {
	if batch.RecipeID == 0 || batch.QuantityProduced <= 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	batch.ID = s.nextID(TableProductionBatches)
	batch.CreatedAt = stampCreatedAt(batch.CreatedAt)
	s.productionBatches[batch.ID] = batch
	s.mu.Unlock()
	s.notify()

	created := batch
	return &created, nil
}

// ---- finished products ----

func (s *Store) ListProducts(_ context.Context) ([]domain.FinishedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.FinishedProduct, 0, len(s.products))
	for _, product := range s.products {
		products = append(products, product)
	}
	slices.SortFunc(products, func(a, b domain.FinishedProduct) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.FinishedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := product
	return &copied, nil
}

// FindProductByName matches case-insensitively; the engine relies on
// this to keep at most one finished product per distinct name.
func (s *Store) FindProductByName(_ context.Context, name string) (*domain.FinishedProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, product := range s.products {
		if strings.EqualFold(product.Name, name) {
			copied := product
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateProduct(_ context.Context, product domain.FinishedProduct) (*domain.FinishedProduct, error) {
	if product.Name == "" || product.QuantityOnHand < 0 || product.WeightedAverageCost < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	for _, existing := range s.products {
		if strings.EqualFold(existing.Name, product.Name) {
			s.mu.Unlock()
			return nil, store.ErrValidation
		}
	}
	product.ID = s.nextID(TableProducts)
	product.CreatedAt = stampCreatedAt(product.CreatedAt)
	s.products[product.ID] = product
	s.mu.Unlock()
	s.notify()

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.FinishedProduct) (*domain.FinishedProduct, error) {
	if product.Name == "" || product.QuantityOnHand < 0 || product.WeightedAverageCost < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	existing, ok := s.products[product.ID]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	s.products[product.ID] = product
	s.mu.Unlock()
	s.notify()

	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.products[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.products, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ---- orders ----

func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		return int(b.ID - a.ID)
	})
	return orders, nil
}

func (s *Store) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := order
	return &copied, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order, lines []domain.OrderLine) (*domain.Order, error) {
	if order.CustomerName == "" || !order.Status.Valid() || len(lines) == 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	order.ID = s.nextID(TableOrders)
	order.CreatedAt = stampCreatedAt(order.CreatedAt)
	s.orders[order.ID] = order
	for _, line := range lines {
		line.ID = s.nextID(TableOrderLines)
		line.OrderID = order.ID
		s.orderLines[line.ID] = line
	}
	s.mu.Unlock()
	s.notify()

	created := order
	return &created, nil
}

// UpdateOrder replaces the line set wholesale. Status guards live in
// the service layer; the store only checks shape.
func (s *Store) UpdateOrder(_ context.Context, order domain.Order, lines []domain.OrderLine) (*domain.Order, error) {
	if order.CustomerName == "" || !order.Status.Valid() || len(lines) == 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	existing, ok := s.orders[order.ID]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	order.CreatedAt = existing.CreatedAt
	s.orders[order.ID] = order
	s.deleteOrderLinesLocked(order.ID)
	for _, line := range lines {
		line.ID = s.nextID(TableOrderLines)
		line.OrderID = order.ID
		s.orderLines[line.ID] = line
	}
	s.mu.Unlock()
	s.notify()

	updated := order
	return &updated, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	order, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	order.Status = status
	s.orders[id] = order
	s.mu.Unlock()
	s.notify()

	updated := order
	return &updated, nil
}

func (s *Store) DeleteOrder(_ context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.orders[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.orders, id)
	s.deleteOrderLinesLocked(id)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) deleteOrderLinesLocked(orderID int64) {
	for lineID, line := range s.orderLines {
		if line.OrderID == orderID {
			delete(s.orderLines, lineID)
		}
	}
}

// ListOrderLines is the secondary-index lookup by order id.
func (s *Store) ListOrderLines(_ context.Context, orderID int64) ([]domain.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]domain.OrderLine, 0, 8)
	for _, line := range s.orderLines {
		if line.OrderID == orderID {
			lines = append(lines, line)
		}
	}
	slices.SortFunc(lines, func(a, b domain.OrderLine) int {
		return int(a.ID - b.ID)
	})
	return lines, nil
}

// ---- ledger ----

func (s *Store) ListLedgerEntries(_ context.Context) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LedgerEntry, 0, len(s.ledgerEntries))
	for _, entry := range s.ledgerEntries {
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a, b domain.LedgerEntry) int {
		return int(b.ID - a.ID)
	})
	return entries, nil
}

func (s *Store) GetLedgerEntry(_ context.Context, id int64) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.ledgerEntries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := entry
	return &copied, nil
}

func (s *Store) CreateLedgerEntry(_ context.Context, entry domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if entry.Value <= 0 || entry.Origin == "" {
		return nil, store.ErrValidation
	}
	if entry.Type != domain.EntryTypeInflow && entry.Type != domain.EntryTypeOutflow {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	entry.ID = s.nextID(TableLedgerEntries)
	entry.CreatedAt = stampCreatedAt(entry.CreatedAt)
	if entry.Date.IsZero() {
		entry.Date = entry.CreatedAt
	}
	s.ledgerEntries[entry.ID] = entry
	s.mu.Unlock()
	s.notify()

	created := entry
	return &created, nil
}

func (s *Store) DeleteLedgerEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.ledgerEntries[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.ledgerEntries, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// FindOrderLedgerEntry locates the origin=order entry for an order id.
// Used by the cancellation path to remove and replace it.
func (s *Store) FindOrderLedgerEntry(_ context.Context, orderID int64) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.ledgerEntries {
		if entry.Origin == domain.OriginOrder && entry.OrderID == orderID {
			copied := entry
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

// ---- losses ----

func (s *Store) ListLosses(_ context.Context) ([]domain.Loss, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	losses := make([]domain.Loss, 0, len(s.losses))
	for _, loss := range s.losses {
		losses = append(losses, loss)
	}
	slices.SortFunc(losses, func(a, b domain.Loss) int {
		return int(b.ID - a.ID)
	})
	return losses, nil
}

func (s *Store) CreateLoss(_ context.Context, loss domain.Loss) (*domain.Loss, error) {
	if loss.ProductID == 0 || loss.Quantity <= 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	loss.ID = s.nextID(TableLosses)
	loss.CreatedAt = stampCreatedAt(loss.CreatedAt)
	s.losses[loss.ID] = loss
	s.mu.Unlock()
	s.notify()

	created := loss
	return &created, nil
}

// ---- export / import ----

// ExportAll produces the full backup document. The users table is
// deliberately excluded: credentials never leave the process in a
// backup file.
func (s *Store) ExportAll(_ context.Context) (domain.BackupDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := domain.BackupDocument{
		Meta: &domain.BackupMeta{
			FormatVersion: backupFormatVersion,
			ExportID:      xid.New("export"),
			ExportedAt:    time.Now().UTC(),
			App:           "saboaria-erp",
		},
		Suppliers:         sortedByID(s.suppliers, func(v domain.Supplier) int64 { return v.ID }),
		RawMaterials:      sortedByID(s.rawMaterials, func(v domain.RawMaterial) int64 { return v.ID }),
		Recipes:           sortedByID(s.recipes, func(v domain.Recipe) int64 { return v.ID }),
		RecipeLines:       sortedByID(s.recipeLines, func(v domain.RecipeLine) int64 { return v.ID }),
		ProductionBatches: sortedByID(s.productionBatches, func(v domain.ProductionBatch) int64 { return v.ID }),
		Products:          sortedByID(s.products, func(v domain.FinishedProduct) int64 { return v.ID }),
		Orders:            sortedByID(s.orders, func(v domain.Order) int64 { return v.ID }),
		OrderLines:        sortedByID(s.orderLines, func(v domain.OrderLine) int64 { return v.ID }),
		LedgerEntries:     sortedByID(s.ledgerEntries, func(v domain.LedgerEntry) int64 { return v.ID }),
		Losses:            sortedByID(s.losses, func(v domain.Loss) int64 { return v.ID }),
	}
	return doc, nil
}

func sortedByID[T any](table map[int64]T, id func(T) int64) []T {
	rows := make([]T, 0, len(table))
	for _, row := range table {
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b T) int {
		return int(id(a) - id(b))
	})
	return rows
}

// ImportAll replaces every table wholesale, preserving ids verbatim.
// The metadata block is checked before any table is touched.
func (s *Store) ImportAll(_ context.Context, doc domain.BackupDocument) error {
	if doc.Meta == nil {
		return store.ErrValidation
	}

	s.mu.Lock()
	s.suppliers = make(map[int64]domain.Supplier, len(doc.Suppliers))
	s.seq[TableSuppliers] = 0
	for _, row := range doc.Suppliers {
		s.suppliers[row.ID] = row
		s.bumpSeq(TableSuppliers, row.ID)
	}

	s.rawMaterials = make(map[int64]domain.RawMaterial, len(doc.RawMaterials))
	s.seq[TableRawMaterials] = 0
	for _, row := range doc.RawMaterials {
		s.rawMaterials[row.ID] = row
		s.bumpSeq(TableRawMaterials, row.ID)
	}

	s.recipes = make(map[int64]domain.Recipe, len(doc.Recipes))
	s.seq[TableRecipes] = 0
	for _, row := range doc.Recipes {
		s.recipes[row.ID] = row
		s.bumpSeq(TableRecipes, row.ID)
	}

	s.recipeLines = make(map[int64]domain.RecipeLine, len(doc.RecipeLines))
	s.seq[TableRecipeLines] = 0
	for _, row := range doc.RecipeLines {
		s.recipeLines[row.ID] = row
		s.bumpSeq(TableRecipeLines, row.ID)
	}

	s.productionBatches = make(map[int64]domain.ProductionBatch, len(doc.ProductionBatches))
	s.seq[TableProductionBatches] = 0
	for _, row := range doc.ProductionBatches {
		s.productionBatches[row.ID] = row
		s.bumpSeq(TableProductionBatches, row.ID)
	}

	s.products = make(map[int64]domain.FinishedProduct, len(doc.Products))
	s.seq[TableProducts] = 0
	for _, row := range doc.Products {
		s.products[row.ID] = row
		s.bumpSeq(TableProducts, row.ID)
	}

	s.orders = make(map[int64]domain.Order, len(doc.Orders))
	s.seq[TableOrders] = 0
	for _, row := range doc.Orders {
		s.orders[row.ID] = row
		s.bumpSeq(TableOrders, row.ID)
	}

	s.orderLines = make(map[int64]domain.OrderLine, len(doc.OrderLines))
	s.seq[TableOrderLines] = 0
	for _, row := range doc.OrderLines {
		s.orderLines[row.ID] = row
		s.bumpSeq(TableOrderLines, row.ID)
	}

	s.ledgerEntries = make(map[int64]domain.LedgerEntry, len(doc.LedgerEntries))
	s.seq[TableLedgerEntries] = 0
	for _, row := range doc.LedgerEntries {
		s.ledgerEntries[row.ID] = row
		s.bumpSeq(TableLedgerEntries, row.ID)
	}

	s.losses = make(map[int64]domain.Loss, len(doc.Losses))
	s.seq[TableLosses] = 0
	for _, row := range doc.Losses {
		s.losses[row.ID] = row
		s.bumpSeq(TableLosses, row.ID)
	}
	s.mu.Unlock()
	s.notify()

	return nil
}

// Counts reports row counts per entity table. The users table is not
// an entity table and is excluded; the recovery layer uses these
// counts to decide whether the store is entirely empty.
func (s *Store) Counts(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		TableSuppliers:         len(s.suppliers),
		TableRawMaterials:      len(s.rawMaterials),
		TableRecipes:           len(s.recipes),
		TableRecipeLines:       len(s.recipeLines),
		TableProductionBatches: len(s.productionBatches),
		TableProducts:          len(s.products),
		TableOrders:            len(s.orders),
		TableOrderLines:        len(s.orderLines),
		TableLedgerEntries:     len(s.ledgerEntries),
		TableLosses:            len(s.losses),
	}, nil
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrValidation
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	if username == "" || password == "" {
		return store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
