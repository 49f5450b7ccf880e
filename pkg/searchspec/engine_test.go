package searchspec

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
)

type testCategory struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Title string `bun:"title" json:"title"`
}

type testProduct struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	WorkspaceID int64   `bun:"workspace_id" json:"workspace_id"`
	SKU         string  `bun:"sku" json:"sku"`
	Name        string  `bun:"name" json:"name"`
	Price       float64 `bun:"price" json:"price"`
	Active      bool    `bun:"active" json:"active"`
	CategoryID  int64   `bun:"category_id" json:"category_id"`

	Category *testCategory `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`

	Label string `bun:"-" json:"label"`
}

func setupEngine(t *testing.T) (*Engine, *bun.DB) {
	t.Helper()

	// One connection per test keeps each in-memory database isolated.
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, m := range []interface{}{(*testCategory)(nil), (*testProduct)(nil)} {
		_, err := db.NewCreateTable().Model(m).Exec(ctx)
		require.NoError(t, err)
	}

	categories := []testCategory{{Title: "Hardware"}, {Title: "Software"}}
	_, err = db.NewInsert().Model(&categories).Exec(ctx)
	require.NoError(t, err)

	products := []testProduct{
		{WorkspaceID: 1, SKU: "HW-001", Name: "Bolt Cutter", Price: 49.9, Active: true, CategoryID: categories[0].ID},
		{WorkspaceID: 1, SKU: "HW-002", Name: "Torque Wrench", Price: 89.5, Active: false, CategoryID: categories[0].ID},
		{WorkspaceID: 1, SKU: "SW-001", Name: "License Server", Price: 1299, Active: true, CategoryID: categories[1].ID},
		{WorkspaceID: 2, SKU: "HW-003", Name: "Bolt Cutter XL", Price: 59.9, Active: true, CategoryID: categories[0].ID},
	}
	_, err = db.NewInsert().Model(&products).Exec(ctx)
	require.NoError(t, err)

	registry := modelregistry.NewEntityRegistry()
	require.NoError(t, registry.Register(&modelregistry.Entity{
		Name:         "products",
		Model:        testProduct{},
		Table:        "products",
		TenantColumn: "workspace_id",
		Preloads:     []string{"Category"},
		Columns: &common.ColumnConfig{
			SimpleColumns: map[string]common.ColumnType{
				"id":           common.ColInt,
				"workspace_id": common.ColInt,
				"sku":          common.ColString,
				"name":         common.ColString,
				"price":        common.ColFloat,
				"active":       common.ColBool,
				"category_id":  common.ColInt,
			},
			JoinColumns: map[string]common.JoinColumn{
				"category_title": {
					Join:   "JOIN categories AS c ON c.id = p.category_id",
					Column: "c.title",
					Type:   common.ColString,
				},
			},
			SearchableColumns: []string{"sku", "name"},
		},
		Enrich: func(item interface{}) {
			p := item.(*testProduct)
			p.Label = p.SKU + " " + p.Name
		},
	}))

	return NewEngine(database.NewBunAdapter(db), registry), db
}

func TestSearchTenantIsolation(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	resp, err := engine.Search(ctx, "products", &common.SearchRequest{}, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)

	resp, err = engine.Search(ctx, "products", &common.SearchRequest{}, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestSearchFreeText(t *testing.T) {
	engine, _ := setupEngine(t)

	resp, err := engine.Search(context.Background(), "products", &common.SearchRequest{
		Search: "BOLT",
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	items := resp.Items.([]testProduct)
	require.Len(t, items, 1)
	assert.Equal(t, "Bolt Cutter", items[0].Name)
}

func TestSearchTypedFilters(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	t.Run("bool equals", func(t *testing.T) {
		resp, err := engine.Search(ctx, "products", &common.SearchRequest{
			Filter: []common.FilterItem{{Column: "active", Operator: common.OpEquals, Value: "true"}},
		}, "1")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("float greater than", func(t *testing.T) {
		resp, err := engine.Search(ctx, "products", &common.SearchRequest{
			Filter: []common.FilterItem{{Column: "price", Operator: common.OpGreaterThan, Value: "80"}},
		}, "1")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("in list", func(t *testing.T) {
		resp, err := engine.Search(ctx, "products", &common.SearchRequest{
			Filter: []common.FilterItem{{Column: "sku", Operator: common.OpIn, Value: "HW-001,SW-001"}},
		}, "1")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := engine.Search(ctx, "products", &common.SearchRequest{
			Filter: []common.FilterItem{{Column: "price", Operator: common.OpGreaterThan, Value: "expensive"}},
		}, "1")
		var verr *common.FilterValueError
		require.ErrorAs(t, err, &verr)
	})
}

func TestSearchJoinColumnFilter(t *testing.T) {
	engine, _ := setupEngine(t)

	resp, err := engine.Search(context.Background(), "products", &common.SearchRequest{
		Filter: []common.FilterItem{
			{Column: "category_title", Operator: common.OpEquals, Value: "Software"},
		},
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	items := resp.Items.([]testProduct)
	require.Len(t, items, 1)
	assert.Equal(t, "SW-001", items[0].SKU)
}

func TestSearchRepeatedJoinFilterJoinsOnce(t *testing.T) {
	engine, _ := setupEngine(t)

	// Two filters through the same join must not duplicate the join clause.
	resp, err := engine.Search(context.Background(), "products", &common.SearchRequest{
		Filter: []common.FilterItem{
			{Column: "category_title", Operator: common.OpContains, Value: "ware"},
			{Column: "category_title", Operator: common.OpNotEquals, Value: "Software"},
		},
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestSearchSortAndPagination(t *testing.T) {
	engine, _ := setupEngine(t)

	resp, err := engine.Search(context.Background(), "products", &common.SearchRequest{
		Sort:     []common.SortItem{{Column: "price", Direction: "desc"}},
		Page:     1,
		PageSize: 2,
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)

	items := resp.Items.([]testProduct)
	require.Len(t, items, 2)
	assert.Equal(t, "SW-001", items[0].SKU)
	assert.Equal(t, "HW-002", items[1].SKU)
}

func TestSearchSortByJoinColumn(t *testing.T) {
	engine, _ := setupEngine(t)

	// Sorting on a joined column attaches its join just like filtering
	// does. Ties break on sku for a stable assertion.
	resp, err := engine.Search(context.Background(), "products", &common.SearchRequest{
		Sort: []common.SortItem{
			{Column: "category_title", Direction: "desc"},
			{Column: "sku", Direction: "asc"},
		},
	}, "1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)

	items := resp.Items.([]testProduct)
	require.Len(t, items, 3)
	assert.Equal(t, "SW-001", items[0].SKU)
	assert.Equal(t, "HW-001", items[1].SKU)
	assert.Equal(t, "HW-002", items[2].SKU)
}

func TestSearchPaginationDisjoint(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	var seen []int64
	for page := 1; page <= 2; page++ {
		resp, err := engine.Search(ctx, "products", &common.SearchRequest{
			Page:     page,
			PageSize: 2,
		}, "1")
		require.NoError(t, err)
		for _, p := range resp.Items.([]testProduct) {
			seen = append(seen, p.ID)
		}
	}

	// Default order is primary key ascending, so consecutive pages
	// concatenate to the full result without duplicates or gaps.
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestSearchPreloadAndEnrich(t *testing.T) {
	engine, _ := setupEngine(t)

	resp, err := engine.Search(context.Background(), "products", &common.SearchRequest{
		Filter: []common.FilterItem{{Column: "sku", Operator: common.OpEquals, Value: "HW-001"}},
	}, "1")
	require.NoError(t, err)

	items := resp.Items.([]testProduct)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "Hardware", items[0].Category.Title)
	assert.Equal(t, "HW-001 Bolt Cutter", items[0].Label)
}

func TestSearchValidationErrors(t *testing.T) {
	engine, _ := setupEngine(t)
	ctx := context.Background()

	t.Run("unknown entity", func(t *testing.T) {
		_, err := engine.Search(ctx, "widgets", &common.SearchRequest{}, "1")
		var uerr *common.UnknownEntityError
		require.ErrorAs(t, err, &uerr)
	})

	t.Run("unknown filter field", func(t *testing.T) {
		_, err := engine.Search(ctx, "products", &common.SearchRequest{
			Filter: []common.FilterItem{{Column: "secret", Operator: common.OpEquals, Value: "x"}},
		}, "1")
		var ferr *common.InvalidFilterFieldError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("unknown sort field", func(t *testing.T) {
		_, err := engine.Search(ctx, "products", &common.SearchRequest{
			Sort: []common.SortItem{{Column: "secret"}},
		}, "1")
		var serr *common.InvalidSortFieldError
		require.ErrorAs(t, err, &serr)
	})
}
