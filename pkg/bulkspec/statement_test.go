package bulkspec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitechdev/DataSpec/pkg/common"
)

var stmtColTypes = map[string]common.ColumnType{
	"name":   common.ColString,
	"active": common.ColBool,
	"price":  common.ColDecimal,
}

func stmtRows() []updateRow {
	return []updateRow{
		{ID: 1, Values: map[string]interface{}{"active": true, "name": "Bolt Cutter"}},
		{ID: 2, Values: map[string]interface{}{"active": false, "name": "Torque Wrench"}},
	}
}

func TestBuildBulkUpdateStatementPostgres(t *testing.T) {
	sqlStr, args := buildBulkUpdateStatement(
		"postgres", "products", "id", "workspace_id", "7",
		[]string{"active", "name"}, stmtRows(), stmtColTypes,
	)

	want := `UPDATE "products" AS t SET "active" = d."active", "name" = d."name"` +
		` FROM (VALUES (?::bigint, ?::boolean, ?::text), (?::bigint, ?::boolean, ?::text))` +
		` AS d("id", "active", "name")` +
		` WHERE t."id" = d."id" AND t."workspace_id" = ?` +
		` RETURNING t."id", t."active", t."name"`
	assert.Equal(t, want, sqlStr)
	assert.Equal(t, []interface{}{
		int64(1), true, "Bolt Cutter",
		int64(2), false, "Torque Wrench",
		"7",
	}, args)
}

func TestBuildBulkUpdateStatementPostgresCasts(t *testing.T) {
	rows := []updateRow{{ID: 5, Values: map[string]interface{}{"price": "19.99"}}}
	sqlStr, _ := buildBulkUpdateStatement(
		"postgres", "products", "id", "", "",
		[]string{"price"}, rows, stmtColTypes,
	)

	assert.Contains(t, sqlStr, "?::numeric")
	assert.NotContains(t, sqlStr, "workspace_id", "tenant clause must be absent without a tenant column")
}

func TestBuildBulkUpdateStatementSQLite(t *testing.T) {
	sqlStr, args := buildBulkUpdateStatement(
		"sqlite", "products", "id", "", "",
		[]string{"active", "name"}, stmtRows(), stmtColTypes,
	)

	// Sqlite rejects alias-qualified columns in RETURNING, so the clause
	// must carry bare column names.
	want := `UPDATE "products" AS t SET "active" = d."active", "name" = d."name"` +
		` FROM (SELECT ? AS "id", ? AS "active", ? AS "name" UNION ALL SELECT ?, ?, ?) AS d` +
		` WHERE t."id" = d."id"` +
		` RETURNING "id", "active", "name"`
	assert.Equal(t, want, sqlStr)
	assert.Len(t, args, 6)
	assert.NotContains(t, sqlStr, `RETURNING t.`)
}

func TestBuildSingleUpdateStatement(t *testing.T) {
	row := updateRow{ID: 3, Values: map[string]interface{}{"name": "Widget"}}
	sqlStr, args := buildSingleUpdateStatement("products", "id", "workspace_id", "7", []string{"name"}, row)

	want := `UPDATE "products" SET "name" = ?` +
		` WHERE "id" = ? AND "workspace_id" = ?` +
		` RETURNING "id", "name"`
	assert.Equal(t, want, sqlStr)
	assert.Equal(t, []interface{}{"Widget", int64(3), "7"}, args)
}

func TestChunkSizing(t *testing.T) {
	tests := []struct {
		fields int
		want   int
	}{
		{1, 10000},
		{3, 5000},
		{19999, 1},
		{30000, 1},
	}

	for _, tt := range tests {
		chunk := MaxQueryParams / (1 + tt.fields)
		if chunk < 1 {
			chunk = 1
		}
		assert.Equal(t, tt.want, chunk, "fields=%d", tt.fields)
	}
}
