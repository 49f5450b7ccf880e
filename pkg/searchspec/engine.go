package searchspec

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/bitechdev/DataSpec/pkg/cache"
	"github.com/bitechdev/DataSpec/pkg/common"
	"github.com/bitechdev/DataSpec/pkg/logger"
	"github.com/bitechdev/DataSpec/pkg/metrics"
	"github.com/bitechdev/DataSpec/pkg/modelregistry"
	"github.com/bitechdev/DataSpec/pkg/reflection"
)

// Engine executes search requests against registered entities. It is safe
// for concurrent use.
type Engine struct {
	db       common.Database
	registry *modelregistry.EntityRegistry
	cacheTTL time.Duration
}

// NewEngine creates a search engine bound to a database and an entity
// registry.
func NewEngine(db common.Database, registry *modelregistry.EntityRegistry) *Engine {
	return &Engine{
		db:       db,
		registry: registry,
		cacheTTL: 2 * time.Minute,
	}
}

// SetCacheTTL overrides the total-count cache TTL.
func (e *Engine) SetCacheTTL(ttl time.Duration) {
	e.cacheTTL = ttl
}

// Registry returns the engine's entity registry.
func (e *Engine) Registry() *modelregistry.EntityRegistry {
	return e.registry
}

// Search runs a search request for the named entity scoped to the given
// workspace. workspaceID is ignored for entities without a tenant column.
func (e *Engine) Search(ctx context.Context, entityName string, req *common.SearchRequest, workspaceID string) (*common.SearchResponse, error) {
	start := time.Now()
	resp, err := e.search(ctx, entityName, req, workspaceID)
	metrics.GetProvider().RecordSearch(entityName, time.Since(start), err)
	return resp, err
}

func (e *Engine) search(ctx context.Context, entityName string, req *common.SearchRequest, workspaceID string) (*common.SearchResponse, error) {
	entity, err := e.registry.Get(entityName)
	if err != nil {
		return nil, &common.UnknownEntityError{Entity: entityName}
	}

	req.Normalize()

	modelType := reflect.TypeOf(entity.Model)
	slicePtr := reflect.New(reflect.SliceOf(modelType))
	items := slicePtr.Interface()

	q := e.db.NewSelect().Model(items)

	if entity.TenantColumn != "" && workspaceID != "" {
		q = q.Where(common.QualifyColumn(entity.Alias, entity.TenantColumn)+" = ?", workspaceID)
	}

	// Resolve filter and sort columns up front so joins are applied before
	// any condition references them. Each join is added at most once.
	tracker := common.NewJoinTracker()
	resolved := make([]common.ResolvedColumn, len(req.Filter))
	for i, f := range req.Filter {
		rc, err := entity.Columns.ResolveFilterColumn(entity.Name, entity.Alias, f.Column)
		if err != nil {
			return nil, err
		}
		resolved[i] = rc
		if tracker.Add(rc.Join) {
			q = q.Join(rc.Join)
		}
	}

	sortCols := make([]common.ResolvedColumn, len(req.Sort))
	for i, s := range req.Sort {
		rc, err := entity.Columns.ResolveSortColumn(entity.Name, entity.Alias, s.Column)
		if err != nil {
			return nil, err
		}
		sortCols[i] = rc
		if tracker.Add(rc.Join) {
			q = q.Join(rc.Join)
		}
	}

	if term := strings.TrimSpace(req.Search); term != "" {
		cols, err := entity.Columns.ResolveSearchColumns(entity.Name, entity.Alias)
		if err != nil {
			return nil, err
		}
		parts := make([]string, 0, len(cols))
		args := make([]interface{}, 0, len(cols))
		for _, col := range cols {
			parts = append(parts, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(term)+"%")
		}
		q = q.Where("("+strings.Join(parts, " OR ")+")", args...)
	}

	for i, f := range req.Filter {
		clause, args, err := buildFilterCondition(resolved[i], f)
		if err != nil {
			return nil, err
		}
		q = q.Where(clause, args...)
	}

	// Count before pagination so total reflects the full match set.
	total, err := e.countTotal(ctx, entity, req, workspaceID, q)
	if err != nil {
		return nil, err
	}

	if len(req.Sort) > 0 {
		for i, s := range req.Sort {
			dir := "ASC"
			if s.Direction == "desc" {
				dir = "DESC"
			}
			q = q.OrderExpr(sortCols[i].SQL + " " + dir)
		}
	} else if pk := reflection.GetPrimaryKeyName(entity.Model); pk != "" {
		// Deterministic page boundaries need a stable order
		q = q.OrderExpr(common.QualifyColumn(entity.Alias, pk) + " ASC")
	}

	for _, rel := range entity.Preloads {
		q = q.Preload(rel)
	}

	q = q.Limit(req.PageSize).Offset((req.Page - 1) * req.PageSize)

	if err := q.Scan(ctx, items); err != nil {
		return nil, err
	}

	sliceVal := slicePtr.Elem()
	if entity.Enrich != nil {
		for i := 0; i < sliceVal.Len(); i++ {
			entity.Enrich(sliceVal.Index(i).Addr().Interface())
		}
	}

	logger.Debug("Search %s: %d/%d rows (page %d, size %d)", entity.Name, sliceVal.Len(), total, req.Page, req.PageSize)

	return common.NewSearchResponse(sliceVal.Interface(), total, req.Page, req.PageSize), nil
}

// countTotal returns the total match count, serving it from cache when a
// recent identical query already counted. Cache failures fall back to a
// live count and never fail the search.
func (e *Engine) countTotal(ctx context.Context, entity *modelregistry.Entity, req *common.SearchRequest, workspaceID string, q common.SelectQuery) (int, error) {
	hash := cache.BuildQueryCacheKey(entity.Name, workspaceID, req)
	key := cache.GetQueryTotalCacheKey(entity.Name, hash)

	c := cache.GetDefaultCache()
	var cached cache.CachedTotal
	if err := c.Get(ctx, key, &cached); err == nil {
		metrics.GetProvider().RecordCacheHit("query_total")
		return cached.Total, nil
	}
	metrics.GetProvider().RecordCacheMiss("query_total")

	total, err := q.Count(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.Set(ctx, key, cache.CachedTotal{Total: total}, e.cacheTTL); err != nil {
		logger.Warn("Failed to cache query total for %s: %v", entity.Name, err)
	}
	return total, nil
}
