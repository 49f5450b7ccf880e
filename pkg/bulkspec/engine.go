package bulkspec

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bitechdev/DataSpec/pkg/cache"
	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/logger"
	"github.com/bitechdev/DataSpec/pkg/metrics"
	"github.com/bitechdev/DataSpec/pkg/modelregistry"
	"github.com/bitechdev/DataSpec/pkg/reflection"
)

// MaxQueryParams caps the bind parameters of one statement. Chunks are
// sized so a statement never exceeds it.
const MaxQueryParams = 20000

// updateRow is one normalized row of a bulk update: its primary key and
// the column values to write.
type updateRow struct {
	ID     int64
	Values map[string]interface{}
}

// rowGroup collects rows sharing the exact same field set so they can
// share one set-based statement.
type rowGroup struct {
	Fields []string
	Rows   []updateRow
}

// Engine executes bulk updates against registered entities.
type Engine struct {
	db       common.Database
	registry *modelregistry.EntityRegistry
}

// NewEngine creates a bulk update engine bound to a database and an
// entity registry.
func NewEngine(db common.Database, registry *modelregistry.EntityRegistry) *Engine {
	return &Engine{db: db, registry: registry}
}

// Registry returns the engine's entity registry.
func (e *Engine) Registry() *modelregistry.EntityRegistry {
	return e.registry
}

// BulkUpdate applies the request rows to the named entity. Row-level
// failures land in the result's Errors list; the call itself only fails
// on an unknown entity or a structurally empty request.
func (e *Engine) BulkUpdate(ctx context.Context, entityName string, req *common.BulkUpdateRequest, workspaceID string) (*common.BulkUpdateResult, error) {
	start := time.Now()
	res, err := e.bulkUpdate(ctx, entityName, req, workspaceID)
	if res != nil {
		metrics.GetProvider().RecordBulkUpdate(entityName, len(res.Updated), len(res.Errors), time.Since(start))
	}
	return res, err
}

func (e *Engine) bulkUpdate(ctx context.Context, entityName string, req *common.BulkUpdateRequest, workspaceID string) (*common.BulkUpdateResult, error) {
	entity, err := e.registry.Get(entityName)
	if err != nil {
		return nil, &common.UnknownEntityError{Entity: entityName}
	}

	if len(req.Data) == 0 {
		return nil, &common.RequestValidationError{Field: "data", Reason: "must not be empty"}
	}

	table, err := tableName(entity)
	if err != nil {
		return nil, err
	}
	pk := reflection.GetPrimaryKeyName(entity.Model)
	if pk == "" {
		pk = "id"
	}

	result := &common.BulkUpdateResult{
		Updated: make([]map[string]interface{}, 0, len(req.Data)),
		Errors:  make([]common.BulkUpdateError, 0),
	}

	groups, rowErrors := normalizeRows(entity, req)
	result.Errors = append(result.Errors, rowErrors...)

	for _, g := range groups {
		// One row costs one id parameter plus one per column.
		chunkSize := MaxQueryParams / (1 + len(g.Fields))
		if chunkSize < 1 {
			chunkSize = 1
		}

		for start := 0; start < len(g.Rows); start += chunkSize {
			end := start + chunkSize
			if end > len(g.Rows) {
				end = len(g.Rows)
			}
			updated, errs := e.updateChunk(ctx, entity, table, pk, workspaceID, g.Fields, g.Rows[start:end])
			result.Updated = append(result.Updated, updated...)
			result.Errors = append(result.Errors, errs...)
		}
	}

	if len(result.Updated) > 0 {
		if err := cache.InvalidateCacheForEntity(ctx, entity.Name); err != nil {
			logger.Warn("Failed to invalidate count cache for %s: %v", entity.Name, err)
		}
	}

	logger.Info("Bulk update %s: %d updated, %d errored", entity.Name, len(result.Updated), len(result.Errors))
	return result, nil
}

// normalizeRows validates each row, applies the update_fields/include_none
// options and groups the survivors by exact field set. Rows that cannot be
// normalized come back as row errors.
func normalizeRows(entity *modelregistry.Entity, req *common.BulkUpdateRequest) ([]rowGroup, []common.BulkUpdateError) {
	groupsByKey := make(map[string]*rowGroup)
	var keys []string
	var rowErrors []common.BulkUpdateError

rowLoop:
	for _, raw := range req.Data {
		id, ok := coerceID(raw["id"])
		if !ok {
			rowErrors = append(rowErrors, common.BulkUpdateError{ID: 0, Error: "missing or invalid id"})
			continue
		}

		candidates := req.UpdateFields
		if len(candidates) == 0 {
			candidates = make([]string, 0, len(raw))
			for k := range raw {
				candidates = append(candidates, k)
			}
		}

		values := make(map[string]interface{})
		for _, f := range candidates {
			if f == "id" {
				continue
			}
			v, present := raw[f]
			if !present {
				continue
			}
			if v == nil && !req.IncludeNone {
				continue
			}
			if _, known := entity.Columns.SimpleColumns[f]; !known {
				rowErrors = append(rowErrors, common.BulkUpdateError{ID: id, Error: fmt.Sprintf("unknown column %q", f)})
				continue rowLoop
			}
			values[f] = v
		}

		if len(values) == 0 {
			rowErrors = append(rowErrors, common.BulkUpdateError{ID: id, Error: "no fields to update"})
			continue
		}

		fields := make([]string, 0, len(values))
		for f := range values {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		key := strings.Join(fields, ",")
		g, exists := groupsByKey[key]
		if !exists {
			g = &rowGroup{Fields: fields}
			groupsByKey[key] = g
			keys = append(keys, key)
		}
		g.Rows = append(g.Rows, updateRow{ID: id, Values: values})
	}

	sort.Strings(keys)
	groups := make([]rowGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *groupsByKey[key])
	}
	return groups, rowErrors
}

// updateChunk writes one chunk in its own transaction. A constraint
// violation rolls the chunk back and retries every row individually so one
// bad row cannot sink its neighbours.
func (e *Engine) updateChunk(ctx context.Context, entity *modelregistry.Entity, table, pk, workspaceID string, fields []string, rows []updateRow) ([]map[string]interface{}, []common.BulkUpdateError) {
	tx, err := e.db.BeginTx(ctx)
	if err != nil {
		return nil, errorsForAll(rows, err)
	}

	sqlStr, args := buildBulkUpdateStatement(e.db.DriverName(), table, pk, entity.TenantColumn, workspaceID, fields, rows, entity.Columns.SimpleColumns)

	var returned []map[string]interface{}
	err = tx.Query(ctx, &returned, sqlStr, args...)
	if err == nil {
		err = tx.CommitTx(ctx)
	}
	if err != nil {
		if rbErr := tx.RollbackTx(ctx); rbErr != nil {
			logger.Debug("Rollback after failed chunk: %v", rbErr)
		}
		if isIntegrityViolation(err) {
			logger.Warn("Bulk update chunk for %s hit a constraint violation, retrying row by row: %v", entity.Name, err)
			return e.updateRowsIndividually(ctx, entity, table, pk, workspaceID, fields, rows)
		}
		return nil, errorsForAll(rows, err)
	}

	seen := make(map[int64]bool, len(returned))
	for _, m := range returned {
		if id, ok := coerceID(m[pk]); ok {
			seen[id] = true
		}
	}

	var errs []common.BulkUpdateError
	for _, r := range rows {
		if !seen[r.ID] {
			errs = append(errs, common.BulkUpdateError{ID: r.ID, Error: "row not found or workspace mismatch"})
		}
	}
	return returned, errs
}

// updateRowsIndividually is the fallback path: each row in its own
// transaction, so valid rows commit and only the offenders fail.
func (e *Engine) updateRowsIndividually(ctx context.Context, entity *modelregistry.Entity, table, pk, workspaceID string, fields []string, rows []updateRow) ([]map[string]interface{}, []common.BulkUpdateError) {
	var updated []map[string]interface{}
	var errs []common.BulkUpdateError

	for _, row := range rows {
		tx, err := e.db.BeginTx(ctx)
		if err != nil {
			errs = append(errs, common.BulkUpdateError{ID: row.ID, Error: err.Error()})
			continue
		}

		sqlStr, args := buildSingleUpdateStatement(table, pk, entity.TenantColumn, workspaceID, fields, row)

		var returned []map[string]interface{}
		err = tx.Query(ctx, &returned, sqlStr, args...)
		if err == nil {
			err = tx.CommitTx(ctx)
		}
		if err != nil {
			if rbErr := tx.RollbackTx(ctx); rbErr != nil {
				logger.Debug("Rollback after failed row %d: %v", row.ID, rbErr)
			}
			errs = append(errs, common.BulkUpdateError{ID: row.ID, Error: err.Error()})
			continue
		}

		if len(returned) == 0 {
			errs = append(errs, common.BulkUpdateError{ID: row.ID, Error: "row not found or workspace mismatch"})
			continue
		}
		updated = append(updated, returned...)
	}

	return updated, errs
}

func errorsForAll(rows []updateRow, err error) []common.BulkUpdateError {
	errs := make([]common.BulkUpdateError, 0, len(rows))
	for _, r := range rows {
		errs = append(errs, common.BulkUpdateError{ID: r.ID, Error: err.Error()})
	}
	return errs
}

// tableName resolves the table the raw statements run against.
func tableName(entity *modelregistry.Entity) (string, error) {
	if entity.Table != "" {
		return entity.Table, nil
	}
	if provider, ok := entity.Model.(common.TableNameProvider); ok {
		return provider.TableName(), nil
	}
	return "", fmt.Errorf("entity %s has no table name configured", entity.Name)
}

// coerceID accepts the numeric shapes an id can arrive in: JSON numbers
// decode as float64, database scans return int64, tests may pass int.
func coerceID(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
