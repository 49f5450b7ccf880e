package searchspec

import (
	"strings"

	"github.com/bitechdev/DataSpec/pkg/common"
)

// buildFilterCondition turns a resolved filter into a WHERE fragment with
// its bind arguments. The column reference comes from the entity's column
// config, never from request input.
func buildFilterCondition(col common.ResolvedColumn, f common.FilterItem) (string, []interface{}, error) {
	switch f.Operator {
	case common.OpContains, common.OpDoesNotContain, common.OpStartsWith, common.OpEndsWith:
		if col.Type != common.ColString {
			return "", nil, &common.FilterValueError{Field: f.Column, Value: f.Value, ExpectedType: "string"}
		}
		pattern := strings.ToLower(strings.TrimSpace(f.Value))
		switch f.Operator {
		case common.OpContains:
			return "LOWER(" + col.SQL + ") LIKE ?", []interface{}{"%" + pattern + "%"}, nil
		case common.OpDoesNotContain:
			return "LOWER(" + col.SQL + ") NOT LIKE ?", []interface{}{"%" + pattern + "%"}, nil
		case common.OpStartsWith:
			return "LOWER(" + col.SQL + ") LIKE ?", []interface{}{pattern + "%"}, nil
		default:
			return "LOWER(" + col.SQL + ") LIKE ?", []interface{}{"%" + pattern}, nil
		}

	case common.OpEquals:
		v, err := ConvertValue(f.Column, f.Value, col.Type)
		if err != nil {
			return "", nil, err
		}
		return col.SQL + " = ?", []interface{}{v}, nil

	case common.OpNotEquals:
		v, err := ConvertValue(f.Column, f.Value, col.Type)
		if err != nil {
			return "", nil, err
		}
		return col.SQL + " != ?", []interface{}{v}, nil

	case common.OpGreaterThan, common.OpLessThan, common.OpGreaterOrEqual, common.OpLessOrEqual:
		v, err := ConvertValue(f.Column, f.Value, col.Type)
		if err != nil {
			return "", nil, err
		}
		op := map[common.FilterOperator]string{
			common.OpGreaterThan:    ">",
			common.OpLessThan:       "<",
			common.OpGreaterOrEqual: ">=",
			common.OpLessOrEqual:    "<=",
		}[f.Operator]
		return col.SQL + " " + op + " ?", []interface{}{v}, nil

	case common.OpIsEmpty:
		if col.Type == common.ColString {
			return "(" + col.SQL + " IS NULL OR " + col.SQL + " = '')", nil, nil
		}
		return col.SQL + " IS NULL", nil, nil

	case common.OpIsNotEmpty:
		if col.Type == common.ColString {
			return "(" + col.SQL + " IS NOT NULL AND " + col.SQL + " != '')", nil, nil
		}
		return col.SQL + " IS NOT NULL", nil, nil

	case common.OpIn, common.OpNotIn:
		values, err := ConvertList(f.Column, f.Value, col.Type)
		if err != nil {
			return "", nil, err
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		kw := "IN"
		if f.Operator == common.OpNotIn {
			kw = "NOT IN"
		}
		return col.SQL + " " + kw + " (" + placeholders + ")", values, nil

	default:
		return "", nil, &common.RequestValidationError{Field: "filter", Reason: "unknown operator " + string(f.Operator)}
	}
}
