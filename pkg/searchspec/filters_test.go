package searchspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/DataSpec/pkg/common"
)

func strCol() common.ResolvedColumn {
	return common.ResolvedColumn{SQL: `"name"`, Type: common.ColString}
}

func intCol() common.ResolvedColumn {
	return common.ResolvedColumn{SQL: `"id"`, Type: common.ColInt}
}

func TestBuildFilterConditionStringOps(t *testing.T) {
	tests := []struct {
		op         common.FilterOperator
		wantClause string
		wantArg    string
	}{
		{common.OpContains, `LOWER("name") LIKE ?`, "%widget%"},
		{common.OpDoesNotContain, `LOWER("name") NOT LIKE ?`, "%widget%"},
		{common.OpStartsWith, `LOWER("name") LIKE ?`, "widget%"},
		{common.OpEndsWith, `LOWER("name") LIKE ?`, "%widget"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			clause, args, err := buildFilterCondition(strCol(), common.FilterItem{
				Column: "name", Operator: tt.op, Value: " Widget ",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, []interface{}{tt.wantArg}, args)
		})
	}
}

func TestBuildFilterConditionStringOpsRejectNonString(t *testing.T) {
	_, _, err := buildFilterCondition(intCol(), common.FilterItem{
		Column: "id", Operator: common.OpContains, Value: "4",
	})
	var verr *common.FilterValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "string", verr.ExpectedType)
}

func TestBuildFilterConditionComparisons(t *testing.T) {
	tests := []struct {
		op         common.FilterOperator
		wantClause string
	}{
		{common.OpEquals, `"id" = ?`},
		{common.OpNotEquals, `"id" != ?`},
		{common.OpGreaterThan, `"id" > ?`},
		{common.OpLessThan, `"id" < ?`},
		{common.OpGreaterOrEqual, `"id" >= ?`},
		{common.OpLessOrEqual, `"id" <= ?`},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			clause, args, err := buildFilterCondition(intCol(), common.FilterItem{
				Column: "id", Operator: tt.op, Value: "7",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, []interface{}{int64(7)}, args)
		})
	}
}

func TestBuildFilterConditionEmptiness(t *testing.T) {
	t.Run("is_empty on string covers empty string", func(t *testing.T) {
		clause, args, err := buildFilterCondition(strCol(), common.FilterItem{
			Column: "name", Operator: common.OpIsEmpty,
		})
		require.NoError(t, err)
		assert.Equal(t, `("name" IS NULL OR "name" = '')`, clause)
		assert.Empty(t, args)
	})

	t.Run("is_empty on int is null check only", func(t *testing.T) {
		clause, _, err := buildFilterCondition(intCol(), common.FilterItem{
			Column: "id", Operator: common.OpIsEmpty,
		})
		require.NoError(t, err)
		assert.Equal(t, `"id" IS NULL`, clause)
	})

	t.Run("is_not_empty on string", func(t *testing.T) {
		clause, _, err := buildFilterCondition(strCol(), common.FilterItem{
			Column: "name", Operator: common.OpIsNotEmpty,
		})
		require.NoError(t, err)
		assert.Equal(t, `("name" IS NOT NULL AND "name" != '')`, clause)
	})
}

func TestBuildFilterConditionInLists(t *testing.T) {
	t.Run("in with individual placeholders", func(t *testing.T) {
		clause, args, err := buildFilterCondition(intCol(), common.FilterItem{
			Column: "id", Operator: common.OpIn, Value: "1,2,3",
		})
		require.NoError(t, err)
		assert.Equal(t, `"id" IN (?, ?, ?)`, clause)
		assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, args)
	})

	t.Run("not_in", func(t *testing.T) {
		clause, args, err := buildFilterCondition(strCol(), common.FilterItem{
			Column: "name", Operator: common.OpNotIn, Value: "a,b",
		})
		require.NoError(t, err)
		assert.Equal(t, `"name" NOT IN (?, ?)`, clause)
		assert.Len(t, args, 2)
	})

	t.Run("in fails on one bad element", func(t *testing.T) {
		_, _, err := buildFilterCondition(intCol(), common.FilterItem{
			Column: "id", Operator: common.OpIn, Value: "1,two",
		})
		var verr *common.FilterValueError
		require.ErrorAs(t, err, &verr)
	})
}
