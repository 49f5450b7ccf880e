package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/modelregistry"
)

// Workspace is the tenant root. It has no tenant column itself.
type Workspace struct {
	bun.BaseModel `bun:"table:workspaces,alias:w"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Plan      string    `bun:"plan" json:"plan"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// User belongs to a workspace.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	WorkspaceID int64      `bun:"workspace_id,notnull" json:"workspace_id"`
	Email       string     `bun:"email,notnull" json:"email"`
	FullName    string     `bun:"full_name" json:"full_name"`
	Role        string     `bun:"role" json:"role"`
	Active      bool       `bun:"active" json:"active"`
	LastLoginAt *time.Time `bun:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Category is shared across workspaces.
type Category struct {
	bun.BaseModel `bun:"table:catalog_categories,alias:cat"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Title string `bun:"title,notnull" json:"title"`
}

// Stock tracks per-product inventory.
type Stock struct {
	bun.BaseModel `bun:"table:catalog_stocks,alias:st"`

	ID        int64 `bun:"id,pk,autoincrement" json:"id"`
	ProductID int64 `bun:"product_id,notnull" json:"product_id"`
	OnHand    int   `bun:"on_hand" json:"on_hand"`
	Reserved  int   `bun:"reserved" json:"reserved"`
}

// Product is the main demo entity: tenant scoped, with a category join
// and a stock relation enriched into Available.
type Product struct {
	bun.BaseModel `bun:"table:catalog_products,alias:p"`

	ID          int64           `bun:"id,pk,autoincrement" json:"id"`
	WorkspaceID int64           `bun:"workspace_id,notnull" json:"workspace_id"`
	SKU         string          `bun:"sku,notnull" json:"sku"`
	Name        string          `bun:"name,notnull" json:"name"`
	Description string          `bun:"description" json:"description"`
	Price       decimal.Decimal `bun:"price,type:numeric" json:"price"`
	Active      bool            `bun:"active" json:"active"`
	CategoryID  int64           `bun:"category_id" json:"category_id"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	Stock    *Stock    `bun:"rel:has-one,join:id=product_id" json:"stock,omitempty"`

	// Available is derived from the stock relation after loading.
	Available int `bun:"-" json:"available"`
}

// registerEntities wires the demo models into the default registry.
func registerEntities() error {
	entities := []*modelregistry.Entity{
		{
			Name:  "workspaces",
			Model: Workspace{},
			Table: "workspaces",
			Columns: &common.ColumnConfig{
				SimpleColumns: map[string]common.ColumnType{
					"id":         common.ColInt,
					"name":       common.ColString,
					"plan":       common.ColString,
					"created_at": common.ColTime,
				},
				SearchableColumns: []string{"name"},
			},
		},
		{
			Name:         "users",
			Model:        User{},
			Table:        "users",
			TenantColumn: "workspace_id",
			Columns: &common.ColumnConfig{
				SimpleColumns: map[string]common.ColumnType{
					"id":            common.ColInt,
					"workspace_id":  common.ColInt,
					"email":         common.ColString,
					"full_name":     common.ColString,
					"role":          common.ColString,
					"active":        common.ColBool,
					"last_login_at": common.ColTime,
					"created_at":    common.ColTime,
				},
				SearchableColumns: []string{"email", "full_name"},
				SortableColumns:   []string{"id", "email", "full_name", "created_at"},
			},
		},
		{
			Name:  "categories",
			Model: Category{},
			Table: "catalog_categories",
			Columns: &common.ColumnConfig{
				SimpleColumns: map[string]common.ColumnType{
					"id":    common.ColInt,
					"title": common.ColString,
				},
				SearchableColumns: []string{"title"},
			},
		},
		{
			Name:         "products",
			Model:        Product{},
			Table:        "catalog_products",
			TenantColumn: "workspace_id",
			Preloads:     []string{"Category", "Stock"},
			Columns: &common.ColumnConfig{
				SimpleColumns: map[string]common.ColumnType{
					"id":           common.ColInt,
					"workspace_id": common.ColInt,
					"sku":          common.ColString,
					"name":         common.ColString,
					"description":  common.ColString,
					"price":        common.ColDecimal,
					"active":       common.ColBool,
					"category_id":  common.ColInt,
					"created_at":   common.ColTime,
				},
				JoinColumns: map[string]common.JoinColumn{
					"category_title": {
						Join:   `JOIN catalog_categories AS cat ON cat.id = p.category_id`,
						Column: `cat.title`,
						Type:   common.ColString,
					},
				},
				SearchableColumns: []string{"sku", "name", "description"},
			},
			Enrich: func(item interface{}) {
				p, ok := item.(*Product)
				if !ok || p.Stock == nil {
					return
				}
				p.Available = p.Stock.OnHand - p.Stock.Reserved
			},
		},
		{
			Name:  "stocks",
			Model: Stock{},
			Table: "catalog_stocks",
			Columns: &common.ColumnConfig{
				SimpleColumns: map[string]common.ColumnType{
					"id":         common.ColInt,
					"product_id": common.ColInt,
					"on_hand":    common.ColInt,
					"reserved":   common.ColInt,
				},
			},
		},
	}

	for _, e := range entities {
		if err := modelregistry.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// createSchema creates the demo tables when they do not exist yet.
func createSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*Workspace)(nil),
		(*User)(nil),
		(*Category)(nil),
		(*Stock)(nil),
		(*Product)(nil),
	}

	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// seedDemoData inserts a small fixture set on an empty database.
func seedDemoData(ctx context.Context, db *bun.DB) error {
	count, err := db.NewSelect().Model((*Workspace)(nil)).Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	workspaces := []Workspace{
		{Name: "Acme Corp", Plan: "enterprise"},
		{Name: "Widgets Ltd", Plan: "starter"},
	}
	if _, err := db.NewInsert().Model(&workspaces).Exec(ctx); err != nil {
		return err
	}

	categories := []Category{
		{Title: "Hardware"},
		{Title: "Software"},
	}
	if _, err := db.NewInsert().Model(&categories).Exec(ctx); err != nil {
		return err
	}

	users := []User{
		{WorkspaceID: workspaces[0].ID, Email: "alice@acme.test", FullName: "Alice Johnson", Role: "admin", Active: true},
		{WorkspaceID: workspaces[0].ID, Email: "bob@acme.test", FullName: "Bob Smith", Role: "member", Active: true},
		{WorkspaceID: workspaces[1].ID, Email: "carol@widgets.test", FullName: "Carol White", Role: "admin", Active: false},
	}
	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		return err
	}

	products := []Product{
		{WorkspaceID: workspaces[0].ID, SKU: "HW-001", Name: "Bolt Cutter", Description: "Heavy duty bolt cutter", Price: decimal.RequireFromString("49.90"), Active: true, CategoryID: categories[0].ID},
		{WorkspaceID: workspaces[0].ID, SKU: "SW-001", Name: "License Server", Description: "Floating license server", Price: decimal.RequireFromString("1299.00"), Active: true, CategoryID: categories[1].ID},
		{WorkspaceID: workspaces[1].ID, SKU: "HW-002", Name: "Torque Wrench", Description: "Calibrated torque wrench", Price: decimal.RequireFromString("89.50"), Active: false, CategoryID: categories[0].ID},
	}
	if _, err := db.NewInsert().Model(&products).Exec(ctx); err != nil {
		return err
	}

	stocks := []Stock{
		{ProductID: products[0].ID, OnHand: 120, Reserved: 15},
		{ProductID: products[1].ID, OnHand: 10, Reserved: 2},
		{ProductID: products[2].ID, OnHand: 0, Reserved: 0},
	}
	if _, err := db.NewInsert().Model(&stocks).Exec(ctx); err != nil {
		return err
	}

	return nil
}
