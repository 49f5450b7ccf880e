package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bitechdev/DataSpec/pkg/common"
)

// QueryCacheKey holds the components that determine a search result's total
// row count. Pagination and sorting are deliberately excluded: they do not
// change the count.
type QueryCacheKey struct {
	Entity      string              `json:"entity"`
	WorkspaceID string              `json:"workspace_id,omitempty"`
	Search      string              `json:"search,omitempty"`
	Filters     []common.FilterItem `json:"filters,omitempty"`
}

// BuildQueryCacheKey builds a cache key for total count caching from the
// count-relevant parts of a search request.
func BuildQueryCacheKey(entity, workspaceID string, req *common.SearchRequest) string {
	key := QueryCacheKey{
		Entity:      entity,
		WorkspaceID: workspaceID,
		Search:      req.Search,
		Filters:     req.Filter,
	}

	jsonData, err := json.Marshal(key)
	if err != nil {
		// Fallback to plain concatenation if JSON fails
		return hashString(fmt.Sprintf("%s_%s_%s_%v", entity, workspaceID, req.Search, req.Filter))
	}

	return hashString(string(jsonData))
}

// hashString computes the SHA256 hash of a string
func hashString(s string) string {
	h := sha256.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// GetQueryTotalCacheKey returns a formatted cache key for storing/retrieving
// total count. The entity name stays in the key so per-entity invalidation
// can match on it.
func GetQueryTotalCacheKey(entity, hash string) string {
	return fmt.Sprintf("query_total:%s:%s", strings.ToLower(entity), hash)
}

// CachedTotal represents a cached total count
type CachedTotal struct {
	Total int `json:"total"`
}

// InvalidateCacheForEntity removes all cached totals for an entity.
// Called after bulk updates so stale counts are not served.
func InvalidateCacheForEntity(ctx context.Context, entity string) error {
	cache := GetDefaultCache()
	pattern := fmt.Sprintf("query_total:%s:*", strings.ToLower(entity))
	return cache.DeleteByPattern(ctx, pattern)
}
