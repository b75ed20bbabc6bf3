package memory

import (
	"context"
	"errors"
	"testing"

	"saboaria/backend/internal/domain"
	"saboaria/backend/internal/store"
)

func TestAutoIncrementAndCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Casa das Essencias"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Atacado Verde"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("created_at must be stamped on insert")
	}
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Casa das Essencias"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := s.UpdateSupplier(ctx, domain.Supplier{ID: created.ID, Name: "Casa das Essencias LTDA"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update must not change created_at")
	}
}

func TestRecipeCascadeDeletesLines(t *testing.T) {
	s := New()
	ctx := context.Background()

	recipe, err := s.CreateRecipe(ctx, domain.Recipe{ProductName: "Soap", YieldUnits: 10}, []domain.RecipeLine{
		{RawMaterialID: 1, QuantityPerBatch: 2},
		{RawMaterialID: 2, QuantityPerBatch: 1},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	lines, err := s.ListRecipeLines(ctx, recipe.ID)
	if err != nil || len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d (err %v)", len(lines), err)
	}

	if err := s.DeleteRecipe(ctx, recipe.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	lines, _ = s.ListRecipeLines(ctx, recipe.ID)
	if len(lines) != 0 {
		t.Fatalf("lines must be cascade-deleted, got %d", len(lines))
	}
}

func TestFindProductByNameIsCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, domain.FinishedProduct{Name: "Lavender Soap"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := s.FindProductByName(ctx, "LAVENDER soap")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.Name != "Lavender Soap" {
		t.Fatalf("unexpected product: %+v", found)
	}

	if _, err := s.CreateProduct(ctx, domain.FinishedProduct{Name: "lavender SOAP"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("duplicate name must be rejected, got %v", err)
	}
}

func TestValueCopyReads(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateRawMaterial(ctx, domain.RawMaterial{Name: "Lye", QuantityOnHand: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.GetRawMaterial(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	got.QuantityOnHand = 999

	again, _ := s.GetRawMaterial(ctx, created.ID)
	if again.QuantityOnHand != 10 {
		t.Fatalf("mutating a read copy must not touch the store")
	}
}

type countingObserver struct {
	mutations int
}

func (o *countingObserver) StoreMutated() {
	o.mutations++
}

func TestMutationObserverFiresOnWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	observer := &countingObserver{}
	s.SetMutationObserver(observer)

	created, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Casa das Essencias"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.UpdateSupplier(ctx, domain.Supplier{ID: created.ID, Name: "Casa"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := s.DeleteSupplier(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if observer.mutations != 3 {
		t.Fatalf("expected 3 notifications, got %d", observer.mutations)
	}

	if _, err := s.ListSuppliers(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if observer.mutations != 3 {
		t.Fatalf("reads must not notify, got %d", observer.mutations)
	}
}

func TestImportReplacesTablesAndAdvancesSequences(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Old"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	doc, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	doc.Suppliers = []domain.Supplier{{ID: 7, Name: "Imported"}}

	if err := s.ImportAll(ctx, doc); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	suppliers, _ := s.ListSuppliers(ctx)
	if len(suppliers) != 1 || suppliers[0].ID != 7 {
		t.Fatalf("import must preserve ids verbatim: %+v", suppliers)
	}

	next, err := s.CreateSupplier(ctx, domain.Supplier{Name: "After Import"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if next.ID != 8 {
		t.Fatalf("sequence must advance past imported ids, got %d", next.ID)
	}
}

func TestImportRejectsDocumentWithoutMeta(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Keep Me"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := s.ImportAll(ctx, domain.BackupDocument{
		Suppliers: []domain.Supplier{{ID: 1, Name: "Evil"}},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	suppliers, _ := s.ListSuppliers(ctx)
	if len(suppliers) != 1 || suppliers[0].Name != "Keep Me" {
		t.Fatalf("rejected import must not touch tables: %+v", suppliers)
	}
}

func TestCountsCoverEntityTablesOnly(t *testing.T) {
	s := New()
	ctx := context.Background()

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	if len(counts) != 10 {
		t.Fatalf("expected 10 entity tables, got %d", len(counts))
	}
	// The seeded owner account must not show up in entity counts.
	for table, n := range counts {
		if n != 0 {
			t.Fatalf("fresh store should be empty, table %s has %d", table, n)
		}
	}
}

func TestExportIsSortedById(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, name := range []string{"C", "A", "B"} {
		if _, err := s.CreateSupplier(ctx, domain.Supplier{Name: name}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	doc, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if doc.Meta == nil {
		t.Fatalf("export must carry metadata")
	}
	for i := 1; i < len(doc.Suppliers); i++ {
		if doc.Suppliers[i].ID <= doc.Suppliers[i-1].ID {
			t.Fatalf("export must be id-ordered: %+v", doc.Suppliers)
		}
	}
}
