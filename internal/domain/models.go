package domain

import "time"

type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SupplierSaveRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type RawMaterial struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Unit           string    `json:"unit"`
	QuantityOnHand float64   `json:"quantity_on_hand"`
	UnitCost       float64   `json:"unit_cost"`
	MinStock       float64   `json:"min_stock"`
	CreatedAt      time.Time `json:"created_at"`
}

type RawMaterialSaveRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Unit           string  `json:"unit"`
	QuantityOnHand float64 `json:"quantity_on_hand"`
	UnitCost       float64 `json:"unit_cost"`
	MinStock       float64 `json:"min_stock"`
}

type Recipe struct {
	ID             int64     `json:"id"`
	ProductName    string    `json:"product_name"`
	Description    string    `json:"description,omitempty"`
	YieldUnits     float64   `json:"yield_units"`
	MarginPercent  float64   `json:"margin_percent"`
	TotalCost      float64   `json:"total_cost"`
	UnitCost       float64   `json:"unit_cost"`
	SuggestedPrice float64   `json:"suggested_price"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecipeLine is the quantity of one raw material needed to produce
// YieldUnits of the recipe's output. Lines are cascade-deleted with
// their recipe.
type RecipeLine struct {
	ID               int64   `json:"id"`
	RecipeID         int64   `json:"recipe_id"`
	RawMaterialID    int64   `json:"raw_material_id"`
	QuantityPerBatch float64 `json:"quantity_per_batch"`
}

type RecipeLineInput struct {
	RawMaterialID    int64   `json:"raw_material_id"`
	QuantityPerBatch float64 `json:"quantity_per_batch"`
}

type RecipeSaveRequest struct {
	ProductName   string            `json:"product_name"`
	Description   string            `json:"description"`
	YieldUnits    float64           `json:"yield_units"`
	MarginPercent float64           `json:"margin_percent"`
	Lines         []RecipeLineInput `json:"lines"`
}

type RecipeDetail struct {
	Recipe Recipe       `json:"recipe"`
	Lines  []RecipeLine `json:"lines"`
}

// ProductionBatch is an immutable record of one production run. The
// recipe name is denormalized so the log survives recipe edits.
type ProductionBatch struct {
	ID               int64     `json:"id"`
	RecipeID         int64     `json:"recipe_id"`
	RecipeName       string    `json:"recipe_name"`
	QuantityProduced int       `json:"quantity_produced"`
	TotalCost        float64   `json:"total_cost"`
	CreatedAt        time.Time `json:"created_at"`
}

type ProduceRequest struct {
	RecipeID  int64 `json:"recipe_id"`
	BatchSize int   `json:"batch_size"`
}

type ProduceResponse struct {
	Batch   ProductionBatch `json:"batch"`
	Product FinishedProduct `json:"product"`
}

// FinishedProduct is created lazily on first production of a product
// name and updated thereafter; there is at most one per distinct name
// (matched case-insensitively).
type FinishedProduct struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	QuantityOnHand      int       `json:"quantity_on_hand"`
	WeightedAverageCost float64   `json:"weighted_average_cost"`
	SalePrice           float64   `json:"sale_price"`
	CreatedAt           time.Time `json:"created_at"`
}

type ProductUpdateRequest struct {
	SalePrice *float64 `json:"sale_price,omitempty"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the order lifecycle: pending -> confirmed ->
// delivered, with cancellation allowed from pending or confirmed.
// Delivered and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed || next == OrderStatusCancelled
	case OrderStatusConfirmed:
		return next == OrderStatusDelivered || next == OrderStatusCancelled
	default:
		return false
	}
}

type Order struct {
	ID            int64       `json:"id"`
	CustomerName  string      `json:"customer_name"`
	OrderDate     string      `json:"order_date"`
	PaymentMethod string      `json:"payment_method"`
	TotalValue    float64     `json:"total_value"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderLine snapshots the product name at order time so the order
// remains readable if the product is later renamed or deleted.
type OrderLine struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type OrderLineInput struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type OrderSaveRequest struct {
	CustomerName  string           `json:"customer_name"`
	OrderDate     string           `json:"order_date"`
	PaymentMethod string           `json:"payment_method"`
	Lines         []OrderLineInput `json:"lines"`
}

type OrderDetail struct {
	Order Order       `json:"order"`
	Lines []OrderLine `json:"lines"`
}

type EntryType string

const (
	EntryTypeInflow  EntryType = "inflow"
	EntryTypeOutflow EntryType = "outflow"
)

type EntryOrigin string

const (
	OriginManual        EntryOrigin = "manual"
	OriginOrder         EntryOrigin = "order"
	OriginOrderReversal EntryOrigin = "order-reversal"
	OriginProduction    EntryOrigin = "production"
	OriginLoss          EntryOrigin = "loss"
)

type LedgerEntry struct {
	ID          int64       `json:"id"`
	Type        EntryType   `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Value       float64     `json:"value"`
	Date        time.Time   `json:"date"`
	Origin      EntryOrigin `json:"origin"`
	OrderID     int64       `json:"order_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type LedgerEntryCreateRequest struct {
	Type        EntryType `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	Date        string    `json:"date"`
}

type LedgerSummary struct {
	TotalInflow  float64 `json:"total_inflow"`
	TotalOutflow float64 `json:"total_outflow"`
	Balance      float64 `json:"balance"`
}

type Loss struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Category    string    `json:"category"`
	Notes       string    `json:"notes,omitempty"`
	Value       float64   `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
}

type LossCreateRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
}

// BackupMeta identifies a backup document. A document without it is
// treated as corrupt or foreign and rejected before any table is
// touched.
type BackupMeta struct {
	FormatVersion int       `json:"format_version"`
	ExportID      string    `json:"export_id"`
	ExportedAt    time.Time `json:"exported_at"`
	App           string    `json:"app"`
}

// BackupDocument is the full-store export: every entity table plus the
// metadata block. Ids are preserved verbatim across export/import.
type BackupDocument struct {
	Meta              *BackupMeta       `json:"_meta"`
	Suppliers         []Supplier        `json:"suppliers"`
	RawMaterials      []RawMaterial     `json:"raw_materials"`
	Recipes           []Recipe          `json:"recipes"`
	RecipeLines       []RecipeLine      `json:"recipe_lines"`
	ProductionBatches []ProductionBatch `json:"production_batches"`
	Products          []FinishedProduct `json:"products"`
	Orders            []Order           `json:"orders"`
	OrderLines        []OrderLine       `json:"order_lines"`
	LedgerEntries     []LedgerEntry     `json:"ledger_entries"`
	Losses            []Loss            `json:"losses"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type DashboardSummary struct {
	PendingOrders     int           `json:"pending_orders"`
	LowStockMaterials []RawMaterial `json:"low_stock_materials"`
	FinishedUnits     int           `json:"finished_units"`
	Ledger            LedgerSummary `json:"ledger"`
}
