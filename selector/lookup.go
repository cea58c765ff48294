package selector

import (
	"reflect"
	"strings"

	"github.com/apokryfos/Enumerable/sequence"
	"github.com/spf13/cast"
)

// Lookup resolves a named or indexed member of value.
func Lookup(value any, name any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *sequence.Map:
		return v.Get(name)
	case Getter:
		return v.Get(cast.ToString(name))
	case map[string]any:
		found, ok := v[cast.ToString(name)]
		return found, ok
	case []any:
		i, err := cast.ToIntE(name)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	}

	rv := reflect.ValueOf(value)
	if s, ok := name.(string); ok && s != "" {
		if m := rv.MethodByName(s); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			return m.Call(nil)[0].Interface(), true
		}
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		s, ok := name.(string)
		if !ok {
			return nil, false
		}
		return structField(rv, s)
	case reflect.Map:
		key, ok := mapKey(rv.Type().Key(), name)
		if !ok {
			return nil, false
		}
		if found := rv.MapIndex(key); found.IsValid() {
			return found.Interface(), true
		}
	case reflect.Slice, reflect.Array:
		i, err := cast.ToIntE(name)
		if err == nil && i >= 0 && i < rv.Len() {
			return rv.Index(i).Interface(), true
		}
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (any, bool) {
	t := rv.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return rv.FieldByIndex(f.Index).Interface(), true
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name || strings.EqualFold(f.Name, name) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func mapKey(t reflect.Type, name any) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(cast.ToString(name)).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(name)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(name)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(t), true
	case reflect.Interface:
		return reflect.ValueOf(&name).Elem(), true
	}
	return reflect.Value{}, false
}
