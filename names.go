package modelstate

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/mickamy/modelstate/internal/ident"
)

// TableName returns the storage table of the model described by target.
func TableName(target any) (string, error) {
	m, err := Resolve(target)
	if err != nil {
		return "", err
	}
	return tableName(m), nil
}

// ColumnName returns attribute qualified with the table of the model described by target.
// Attributes that are already qualified are returned as is.
func ColumnName(target any, attribute string) (string, error) {
	m, err := Resolve(target)
	if err != nil {
		return "", err
	}
	return ident.Qualify(tableName(m), attribute), nil
}

func tableName(m Model) string {
	if namer, ok := m.(TableNamer); ok {
		if name := strings.TrimSpace(namer.TableName()); name != "" {
			return name
		}
	}
	typ := reflect.TypeOf(m)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return inflection.Plural(toSnakeCase(typ.Name()))
}

func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
