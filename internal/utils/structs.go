package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the column names of input in field order.
// Untagged embedded structs are flattened, matching how pgxscan maps them.
func StructTagValues(input any) []string {

	targetValue := structValue(input)

	result := make([]string, 0, targetValue.NumField())
	walkColumns(targetValue, func(column string, _ reflect.Value) {
		result = append(result, column)
	})

	return result

}

func StructToMap(input any) map[string]any {

	result := make(map[string]any)
	walkColumns(structValue(input), func(column string, field reflect.Value) {
		result[column] = field.Interface()
	})

	return result

}

// StructToMapNonNil is StructToMap without nil pointer fields, used for
// partial updates.
func StructToMapNonNil(input any) map[string]any {

	result := make(map[string]any)
	walkColumns(structValue(input), func(column string, field reflect.Value) {
		if field.Kind() == reflect.Ptr && field.IsNil() {
			return
		}
		result[column] = field.Interface()
	})

	return result

}

func structValue(input any) reflect.Value {
	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}

	if itemValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return itemValue
}

func walkColumns(itemValue reflect.Value, fn func(column string, field reflect.Value)) {
	itemType := itemValue.Type()

	for i := 0; i < itemValue.NumField(); i++ {

		structField := itemType.Field(i)
		if structField.PkgPath != "" {
			continue
		}

		tagValue := structField.Tag.Get(ColumnTag)
		if structField.Anonymous && tagValue == "" && structField.Type.Kind() == reflect.Struct {
			walkColumns(itemValue.Field(i), fn)
			continue
		}

		if tagValue == "" || tagValue == "-" {
			continue
		}

		fn(tagValue, itemValue.Field(i))

	}
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)

}
