package fetch

import (
	"fmt"
	"reflect"
	"strings"
)

// Mapper turns one row into a caller-defined object. Object-producing modes
// run every row through the mapper; any construction state the target type
// needs is carried by the closure.
type Mapper func(cols []Column, values Row) (any, error)

// recordMapper is the default for object modes when no mapper is supplied.
func recordMapper(cols []Column, values Row) (any, error) {
	return NewRecord(cols, values), nil
}

// StructMapper builds a Mapper that fills a struct of type T from column
// values. Columns bind to fields by `db` tag first, then by
// case-insensitive field name. Columns with no matching field are skipped.
func StructMapper[T any]() Mapper {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return func([]Column, Row) (any, error) {
			return nil, fmt.Errorf("fetch: struct mapper target %T is not a struct", zero)
		}
	}

	index := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
			index[tag] = i
			continue
		}
		index[strings.ToLower(f.Name)] = i
	}

	return func(cols []Column, values Row) (any, error) {
		out := reflect.New(typ).Elem()
		for i, c := range cols {
			fi, ok := index[c.Name]
			if !ok {
				fi, ok = index[strings.ToLower(c.Name)]
			}
			if !ok {
				continue
			}
			if err := setField(out.Field(fi), values[i]); err != nil {
				return nil, fmt.Errorf("fetch: column %q: %w", c.Name, err)
			}
		}
		return out.Interface().(T), nil
	}
}

func setField(field reflect.Value, value any) error {
	if value == nil {
		field.SetZero()
		return nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}
	if v.Type().ConvertibleTo(field.Type()) {
		field.Set(v.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}
