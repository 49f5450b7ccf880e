package bulkspec

import (
	"strings"

	"github.com/bitechdev/DataSpec/pkg/common"
)

// pgCastForType maps a column type to the PostgreSQL cast applied inside
// the VALUES list. Without casts the derived table degrades to text and
// comparisons fail.
func pgCastForType(t common.ColumnType) string {
	switch t {
	case common.ColInt:
		return "bigint"
	case common.ColFloat:
		return "double precision"
	case common.ColDecimal:
		return "numeric"
	case common.ColBool:
		return "boolean"
	case common.ColTime:
		return "timestamptz"
	default:
		return "text"
	}
}

// buildBulkUpdateStatement renders one set-based UPDATE for a group of
// rows sharing the same field set. The derived table carries one row per
// update; the target table joins it on the primary key.
//
// postgres:
//
//	UPDATE "t" AS t SET "c" = d."c" FROM (VALUES (?::bigint, ?::text)) AS d("id", "c")
//	WHERE t."id" = d."id" AND t."workspace_id" = ? RETURNING t."id", t."c"
//
// sqlite and other drivers use a UNION ALL derived table because they lack
// column aliases on VALUES, and bare RETURNING columns because sqlite does
// not resolve the target alias there:
//
//	UPDATE "t" AS t SET "c" = d."c" FROM (SELECT ? AS "id", ? AS "c" UNION ALL SELECT ?, ?) AS d
//	WHERE t."id" = d."id" RETURNING "id", "c"
func buildBulkUpdateStatement(driver, table, pk, tenantColumn, workspaceID string, fields []string, rows []updateRow, colTypes map[string]common.ColumnType) (string, []interface{}) {
	qTable := common.QuoteIdent(table)
	qPK := common.QuoteIdent(pk)

	var sb strings.Builder
	args := make([]interface{}, 0, len(rows)*(1+len(fields))+1)

	sb.WriteString("UPDATE ")
	sb.WriteString(qTable)
	sb.WriteString(" AS t SET ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		qf := common.QuoteIdent(f)
		sb.WriteString(qf)
		sb.WriteString(" = d.")
		sb.WriteString(qf)
	}

	sb.WriteString(" FROM ")
	if driver == "postgres" {
		sb.WriteString("(VALUES ")
		for i, row := range rows {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?::bigint")
			args = append(args, row.ID)
			for _, f := range fields {
				sb.WriteString(", ?::")
				sb.WriteString(pgCastForType(colTypes[f]))
				args = append(args, row.Values[f])
			}
			sb.WriteString(")")
		}
		sb.WriteString(") AS d(")
		sb.WriteString(qPK)
		for _, f := range fields {
			sb.WriteString(", ")
			sb.WriteString(common.QuoteIdent(f))
		}
		sb.WriteString(")")
	} else {
		sb.WriteString("(")
		for i, row := range rows {
			if i > 0 {
				sb.WriteString(" UNION ALL SELECT ?")
				args = append(args, row.ID)
				for _, f := range fields {
					sb.WriteString(", ?")
					args = append(args, row.Values[f])
				}
			} else {
				sb.WriteString("SELECT ? AS ")
				sb.WriteString(qPK)
				args = append(args, row.ID)
				for _, f := range fields {
					sb.WriteString(", ? AS ")
					sb.WriteString(common.QuoteIdent(f))
					args = append(args, row.Values[f])
				}
			}
		}
		sb.WriteString(") AS d")
	}

	sb.WriteString(" WHERE t.")
	sb.WriteString(qPK)
	sb.WriteString(" = d.")
	sb.WriteString(qPK)

	if tenantColumn != "" && workspaceID != "" {
		sb.WriteString(" AND t.")
		sb.WriteString(common.QuoteIdent(tenantColumn))
		sb.WriteString(" = ?")
		args = append(args, workspaceID)
	}

	// Postgres needs the target alias in RETURNING because the derived
	// table exposes the same column names. Sqlite rejects the alias there
	// and only ever resolves the updated table's columns.
	retPrefix := ""
	if driver == "postgres" {
		retPrefix = "t."
	}
	sb.WriteString(" RETURNING ")
	sb.WriteString(retPrefix)
	sb.WriteString(qPK)
	for _, f := range fields {
		sb.WriteString(", ")
		sb.WriteString(retPrefix)
		sb.WriteString(common.QuoteIdent(f))
	}

	return sb.String(), args
}

// buildSingleUpdateStatement renders the per-row fallback UPDATE used when
// a chunk fails on a constraint violation.
func buildSingleUpdateStatement(table, pk, tenantColumn, workspaceID string, fields []string, row updateRow) (string, []interface{}) {
	var sb strings.Builder
	args := make([]interface{}, 0, len(fields)+2)

	sb.WriteString("UPDATE ")
	sb.WriteString(common.QuoteIdent(table))
	sb.WriteString(" SET ")
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(common.QuoteIdent(f))
		sb.WriteString(" = ?")
		args = append(args, row.Values[f])
	}

	sb.WriteString(" WHERE ")
	sb.WriteString(common.QuoteIdent(pk))
	sb.WriteString(" = ?")
	args = append(args, row.ID)

	if tenantColumn != "" && workspaceID != "" {
		sb.WriteString(" AND ")
		sb.WriteString(common.QuoteIdent(tenantColumn))
		sb.WriteString(" = ?")
		args = append(args, workspaceID)
	}

	sb.WriteString(" RETURNING ")
	sb.WriteString(common.QuoteIdent(pk))
	for _, f := range fields {
		sb.WriteString(", ")
		sb.WriteString(common.QuoteIdent(f))
	}

	return sb.String(), args
}
