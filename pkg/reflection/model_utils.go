package reflection

import (
	"reflect"
	"strings"
)

type PrimaryKeyNameProvider interface {
	GetIDName() string
}

// GetPrimaryKeyName extracts the primary key column name from a model.
// It first checks if the model implements PrimaryKeyNameProvider (GetIDName
// method), then falls back to reflection over bun:",pk" tags.
func GetPrimaryKeyName(model any) string {
	if model == nil || reflect.TypeOf(model) == nil {
		return ""
	}

	if provider, ok := model.(PrimaryKeyNameProvider); ok {
		return provider.GetIDName()
	}

	modelType := reflect.TypeOf(model)
	for modelType != nil && (modelType.Kind() == reflect.Pointer || modelType.Kind() == reflect.Slice) {
		modelType = modelType.Elem()
	}
	if modelType == nil || modelType.Kind() != reflect.Struct {
		return ""
	}

	return findPrimaryKeyColumn(modelType)
}

func findPrimaryKeyColumn(typ reflect.Type) string {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct {
				if pk := findPrimaryKeyColumn(fieldType); pk != "" {
					return pk
				}
			}
			continue
		}

		bunTag := field.Tag.Get("bun")
		if bunTag == "" {
			continue
		}
		parts := strings.Split(bunTag, ",")
		isPK := false
		for _, p := range parts[1:] {
			if strings.TrimSpace(p) == "pk" {
				isPK = true
				break
			}
		}
		if !isPK {
			continue
		}
		if parts[0] != "" {
			return parts[0]
		}
		return strings.ToLower(field.Name)
	}
	return ""
}

// GetTableAlias returns the SQL alias bun uses for the model's table. It
// reads the embedded BaseModel's bun tag, preferring an explicit alias and
// falling back to the table name, which bun aliases tables by when no alias
// is declared.
func GetTableAlias(model any) string {
	modelType := reflect.TypeOf(model)
	for modelType != nil && (modelType.Kind() == reflect.Pointer || modelType.Kind() == reflect.Slice) {
		modelType = modelType.Elem()
	}
	if modelType == nil || modelType.Kind() != reflect.Struct {
		return ""
	}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.Anonymous {
			continue
		}
		tag := field.Tag.Get("bun")
		if tag == "" {
			continue
		}

		table := ""
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			if v, ok := strings.CutPrefix(part, "alias:"); ok {
				return v
			}
			if v, ok := strings.CutPrefix(part, "table:"); ok {
				table = v
			}
		}
		if table != "" {
			return table
		}
	}
	return ""
}

// GetPrimaryKeyValue extracts the primary key value from a model instance.
func GetPrimaryKeyValue(model any) any {
	if model == nil || reflect.TypeOf(model) == nil {
		return nil
	}

	val := reflect.ValueOf(model)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	if pkValue := findPrimaryKeyValue(val); pkValue != nil {
		return pkValue
	}

	// Last resort: a field named ID
	return findFieldByName(val, "id")
}

func findPrimaryKeyValue(val reflect.Value) any {
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldValue := val.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if pkValue := findPrimaryKeyValue(fieldValue); pkValue != nil {
				return pkValue
			}
			continue
		}

		bunTag := field.Tag.Get("bun")
		if strings.Contains(bunTag, "pk") && fieldValue.CanInterface() {
			return fieldValue.Interface()
		}
	}

	return nil
}

func findFieldByName(val reflect.Value, name string) any {
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldValue := val.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if result := findFieldByName(fieldValue, name); result != nil {
				return result
			}
			continue
		}

		if strings.EqualFold(field.Name, name) && fieldValue.CanInterface() {
			return fieldValue.Interface()
		}
	}

	return nil
}

// GetModelColumns extracts all column names from a model using reflection.
// It checks bun tags first, then json tags, and finally falls back to the
// lowercase field name. Embedded structs are processed recursively.
func GetModelColumns(model any) []string {
	var columns []string

	modelType := reflect.TypeOf(model)
	for modelType != nil && (modelType.Kind() == reflect.Pointer || modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array) {
		modelType = modelType.Elem()
	}
	if modelType == nil || modelType.Kind() != reflect.Struct {
		return columns
	}

	collectColumnsFromType(modelType, &columns)
	return columns
}

func collectColumnsFromType(typ reflect.Type, columns *[]string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if field.Anonymous {
			fieldType := field.Type
			if fieldType.Kind() == reflect.Pointer {
				fieldType = fieldType.Elem()
			}
			if fieldType.Kind() == reflect.Struct {
				collectColumnsFromType(fieldType, columns)
				continue
			}
		}

		if columnName := getColumnNameFromField(field); columnName != "" {
			*columns = append(*columns, columnName)
		}
	}
}

func getColumnNameFromField(field reflect.StructField) string {
	if bunTag := field.Tag.Get("bun"); bunTag != "" {
		name := strings.Split(bunTag, ",")[0]
		if name == "-" {
			return ""
		}
		// Relation fields carry options only, e.g. bun:"rel:has-many"
		if strings.HasPrefix(bunTag, "rel:") || strings.Contains(bunTag, "rel:") {
			return ""
		}
		if name != "" {
			return name
		}
	}

	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		name := strings.Split(jsonTag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}

	return strings.ToLower(field.Name)
}
