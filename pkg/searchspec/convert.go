package searchspec

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bitechdev/DataSpec/pkg/common"
)

// truthyValues are the string forms accepted as boolean true. Anything
// else converts to false rather than failing.
var truthyValues = map[string]struct{}{
	"true": {},
	"1":    {},
	"yes":  {},
	"on":   {},
}

// ConvertValue coerces a raw filter value to the column's declared type.
// Strings are trimmed, numbers parsed strictly, booleans use the truthy
// set, timestamps parse as RFC 3339.
func ConvertValue(field, value string, t common.ColumnType) (interface{}, error) {
	trimmed := strings.TrimSpace(value)

	switch t {
	case common.ColInt:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, &common.FilterValueError{Field: field, Value: value, ExpectedType: t.String()}
		}
		return n, nil

	case common.ColFloat:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, &common.FilterValueError{Field: field, Value: value, ExpectedType: t.String()}
		}
		return f, nil

	case common.ColDecimal:
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return nil, &common.FilterValueError{Field: field, Value: value, ExpectedType: t.String()}
		}
		return d, nil

	case common.ColBool:
		_, truthy := truthyValues[strings.ToLower(trimmed)]
		return truthy, nil

	case common.ColTime:
		ts, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			return nil, &common.FilterValueError{Field: field, Value: value, ExpectedType: t.String()}
		}
		return ts, nil

	default:
		return trimmed, nil
	}
}

// ConvertList splits a comma separated value and converts every element.
// A single unconvertible element fails the whole list.
func ConvertList(field, value string, t common.ColumnType) ([]interface{}, error) {
	parts := strings.Split(value, ",")
	values := make([]interface{}, 0, len(parts))
	for _, p := range parts {
		v, err := ConvertValue(field, p, t)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
