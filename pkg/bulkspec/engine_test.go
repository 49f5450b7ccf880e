package bulkspec

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/common/adapters/database"
	"github.com/bitechdev/DataSpec/pkg/modelregistry"
	"github.com/bitechdev/DataSpec/pkg/searchspec"
)

type bulkProduct struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	WorkspaceID int64   `bun:"workspace_id" json:"workspace_id"`
	SKU         string  `bun:"sku,unique" json:"sku"`
	Name        string  `bun:"name" json:"name"`
	Price       float64 `bun:"price" json:"price"`
	Active      bool    `bun:"active" json:"active"`
}

func setupBulkEngine(t *testing.T) (*Engine, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.NewCreateTable().Model((*bulkProduct)(nil)).Exec(ctx)
	require.NoError(t, err)

	products := []bulkProduct{
		{WorkspaceID: 1, SKU: "HW-001", Name: "Bolt Cutter", Price: 49.9, Active: true},
		{WorkspaceID: 1, SKU: "HW-002", Name: "Torque Wrench", Price: 89.5, Active: true},
		{WorkspaceID: 2, SKU: "HW-003", Name: "Bolt Cutter XL", Price: 59.9, Active: true},
	}
	_, err = db.NewInsert().Model(&products).Exec(ctx)
	require.NoError(t, err)

	registry := modelregistry.NewEntityRegistry()
	require.NoError(t, registry.Register(&modelregistry.Entity{
		Name:         "products",
		Model:        bulkProduct{},
		Table:        "products",
		TenantColumn: "workspace_id",
		Columns: &common.ColumnConfig{
			SimpleColumns: map[string]common.ColumnType{
				"id":           common.ColInt,
				"workspace_id": common.ColInt,
				"sku":          common.ColString,
				"name":         common.ColString,
				"price":        common.ColFloat,
				"active":       common.ColBool,
			},
		},
	}))

	return NewEngine(database.NewBunAdapter(db), registry), db
}

func fetchProduct(t *testing.T, db *bun.DB, id int64) bulkProduct {
	t.Helper()
	var p bulkProduct
	require.NoError(t, db.NewSelect().Model(&p).Where("id = ?", id).Scan(context.Background()))
	return p
}

func TestBulkUpdateBasic(t *testing.T) {
	engine, db := setupBulkEngine(t)

	res, err := engine.BulkUpdate(context.Background(), "products", &common.BulkUpdateRequest{
		Data: []map[string]interface{}{
			{"id": float64(1), "price": 44.0, "active": false},
			{"id": float64(2), "price": 79.0, "active": true},
		},
	}, "1")
	require.NoError(t, err)

	assert.Len(t, res.Updated, 2)
	assert.Empty(t, res.Errors)

	p1 := fetchProduct(t, db, 1)
	assert.Equal(t, 44.0, p1.Price)
	assert.False(t, p1.Active)

	p2 := fetchProduct(t, db, 2)
	assert.Equal(t, 79.0, p2.Price)
	assert.True(t, p2.Active)
}

func TestBulkUpdateMixedFieldSets(t *testing.T) {
	engine, db := setupBulkEngine(t)

	// Rows with different field sets run in separate statements but share
	// one result.
	res, err := engine.BulkUpdate(context.Background(), "products", &common.BulkUpdateRequest{
		Data: []map[string]interface{}{
			{"id": float64(1), "name": "Bolt Cutter Pro"},
			{"id": float64(2), "price": 99.0, "active": false},
		},
	}, "1")
	require.NoError(t, err)

	assert.Len(t, res.Updated, 2)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "Bolt Cutter Pro", fetchProduct(t, db, 1).Name)
	assert.Equal(t, 99.0, fetchProduct(t, db, 2).Price)
}

func TestBulkUpdateTenantMismatch(t *testing.T) {
	engine, db := setupBulkEngine(t)

	// Row 3 belongs to workspace 2; updating it as workspace 1 must fail
	// without touching the row.
	res, err := engine.BulkUpdate(context.Background(), "products", &common.BulkUpdateRequest{
		Data: []map[string]interface{}{
			{"id": float64(1), "price": 10.0},
			{"id": float64(3), "price": 10.0},
		},
	}, "1")
	require.NoError(t, err)

	assert.Len(t, res.Updated, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(3), res.Errors[0].ID)
	assert.Equal(t, "row not found or workspace mismatch", res.Errors[0].Error)

	assert.Equal(t, 59.9, fetchProduct(t, db, 3).Price)
}

func TestBulkUpdateRowValidation(t *testing.T) {
	engine, _ := setupBulkEngine(t)
	ctx := context.Background()

	t.Run("missing id", func(t *testing.T) {
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{{"price": 10.0}},
		}, "1")
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "missing or invalid id", res.Errors[0].Error)
	})

	t.Run("unknown column", func(t *testing.T) {
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{{"id": float64(1), "secret": "x"}},
		}, "1")
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, int64(1), res.Errors[0].ID)
		assert.Contains(t, res.Errors[0].Error, "unknown column")
	})

	t.Run("no fields", func(t *testing.T) {
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{{"id": float64(1)}},
		}, "1")
		require.NoError(t, err)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "no fields to update", res.Errors[0].Error)
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{}, "1")
		var verr *common.RequestValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := engine.BulkUpdate(ctx, "widgets", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{{"id": float64(1), "price": 1.0}},
		}, "1")
		var uerr *common.UnknownEntityError
		require.ErrorAs(t, err, &uerr)
	})
}

func TestBulkUpdateFieldSelection(t *testing.T) {
	engine, db := setupBulkEngine(t)
	ctx := context.Background()

	t.Run("update_fields restricts writes", func(t *testing.T) {
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{
				{"id": float64(1), "name": "Renamed", "price": 1.0},
			},
			UpdateFields: []string{"name"},
		}, "1")
		require.NoError(t, err)
		assert.Len(t, res.Updated, 1)

		p := fetchProduct(t, db, 1)
		assert.Equal(t, "Renamed", p.Name)
		assert.Equal(t, 49.9, p.Price, "price must not change")
	})

	t.Run("nil skipped by default", func(t *testing.T) {
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{
				{"id": float64(2), "name": nil, "price": 70.0},
			},
		}, "1")
		require.NoError(t, err)
		assert.Len(t, res.Updated, 1)

		p := fetchProduct(t, db, 2)
		assert.Equal(t, "Torque Wrench", p.Name)
		assert.Equal(t, 70.0, p.Price)
	})

	t.Run("include_none writes nulls", func(t *testing.T) {
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{
				{"id": float64(2), "name": nil},
			},
			IncludeNone: true,
		}, "1")
		require.NoError(t, err)
		assert.Len(t, res.Updated, 1)

		p := fetchProduct(t, db, 2)
		assert.Equal(t, "", p.Name)
	})

	t.Run("listed but absent fields are skipped", func(t *testing.T) {
		// include_none only applies to nulls present in the payload. A
		// field named in update_fields but missing from the row is left
		// alone, not nulled.
		res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
			Data: []map[string]interface{}{
				{"id": float64(1), "name": "Relabeled"},
			},
			UpdateFields: []string{"name", "sku"},
			IncludeNone:  true,
		}, "1")
		require.NoError(t, err)
		assert.Len(t, res.Updated, 1)

		p := fetchProduct(t, db, 1)
		assert.Equal(t, "Relabeled", p.Name)
		assert.Equal(t, "HW-001", p.SKU, "absent field keeps its value")
	})
}

func TestBulkUpdateNullThenSearchExcludes(t *testing.T) {
	engine, db := setupBulkEngine(t)
	ctx := context.Background()

	res, err := engine.BulkUpdate(ctx, "products", &common.BulkUpdateRequest{
		Data:        []map[string]interface{}{{"id": float64(1), "name": nil}},
		IncludeNone: true,
	}, "1")
	require.NoError(t, err)
	require.Len(t, res.Updated, 1)

	// The nulled row must drop out of an is_not_empty search.
	search := searchspec.NewEngine(database.NewBunAdapter(db), engine.Registry())
	resp, err := search.Search(ctx, "products", &common.SearchRequest{
		Filter: []common.FilterItem{{Column: "name", Operator: common.OpIsNotEmpty}},
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	items := resp.Items.([]bulkProduct)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestBulkUpdateConstraintFallback(t *testing.T) {
	engine, db := setupBulkEngine(t)

	// Both rows share a field set, so they land in one chunk. The second
	// row collides with an existing unique sku; the chunk rolls back and
	// the row-by-row fallback keeps the valid row.
	res, err := engine.BulkUpdate(context.Background(), "products", &common.BulkUpdateRequest{
		Data: []map[string]interface{}{
			{"id": float64(1), "sku": "HW-010"},
			{"id": float64(2), "sku": "HW-003"},
		},
	}, "1")
	require.NoError(t, err)

	assert.Len(t, res.Updated, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(2), res.Errors[0].ID)

	assert.Equal(t, "HW-010", fetchProduct(t, db, 1).SKU)
	assert.Equal(t, "HW-002", fetchProduct(t, db, 2).SKU, "failed row keeps its old value")
}

func TestCoerceID(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int64
		ok   bool
	}{
		{float64(7), 7, true},
		{int64(7), 7, true},
		{int(7), 7, true},
		{"7", 7, true},
		{7.5, 0, false},
		{"seven", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}

	for _, tt := range tests {
		got, ok := coerceID(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "input %v", tt.in)
		}
	}
}

func TestNormalizeRowsGrouping(t *testing.T) {
	entity := &modelregistry.Entity{
		Name:  "products",
		Model: bulkProduct{},
		Table: "products",
		Columns: &common.ColumnConfig{
			SimpleColumns: map[string]common.ColumnType{
				"name":  common.ColString,
				"price": common.ColFloat,
			},
		},
	}

	groups, rowErrors := normalizeRows(entity, &common.BulkUpdateRequest{
		Data: []map[string]interface{}{
			{"id": float64(1), "name": "a"},
			{"id": float64(2), "price": 1.0, "name": "b"},
			{"id": float64(3), "name": "c"},
		},
	})

	require.Empty(t, rowErrors)
	require.Len(t, groups, 2)

	// Groups come back sorted by field-set key.
	assert.Equal(t, []string{"name"}, groups[0].Fields)
	assert.Len(t, groups[0].Rows, 2)
	assert.Equal(t, []string{"name", "price"}, groups[1].Fields)
	assert.Len(t, groups[1].Rows, 1)
}
