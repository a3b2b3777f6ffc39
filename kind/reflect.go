package kind

import (
	"fmt"
	"reflect"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Reflect infers the Kind of an arbitrary native value.
//
// Scalars resolve to the matching primitive with the lowest possible rank: a
// midnight time.Time is a Date, any other time.Time a Timestamp. Non-empty
// homogeneous sequences resolve to an Array of the element kind. Non-empty
// mappings with string keys resolve to a Struct over the reflected values;
// other homogeneous mappings resolve to a Map. Empty containers and
// heterogeneous non-struct mappings carry no inferable kind and are
// rejected.
func Reflect(value any) (Kind, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("kind: cannot reflect nil value")
	case bool:
		return Boolean, nil
	case float32, float64:
		return Float, nil
	case *apd.Decimal:
		return Decimal, nil
	case string:
		return String, nil
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return Date, nil
		}
		return Timestamp, nil
	}
	if _, ok := toInt64(value); ok {
		return Integer, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return reflectArray(rv)
	case reflect.Map:
		return reflectMapping(rv)
	}
	return nil, fmt.Errorf("kind: cannot reflect value of type %T", value)
}

func reflectArray(rv reflect.Value) (Kind, error) {
	if rv.Len() == 0 {
		return nil, fmt.Errorf("kind: cannot reflect empty sequence")
	}
	elem, err := Reflect(rv.Index(0).Interface())
	if err != nil {
		return nil, err
	}
	for i := 1; i < rv.Len(); i++ {
		k, err := Reflect(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if !elem.Match(k) {
			return nil, fmt.Errorf("kind: heterogeneous sequence: %s vs %s", elem.Name(), k.Name())
		}
	}
	return Array{Element: elem}, nil
}

func reflectMapping(rv reflect.Value) (Kind, error) {
	if rv.Len() == 0 {
		return nil, fmt.Errorf("kind: cannot reflect empty mapping")
	}

	// String-keyed mappings are records: each entry becomes a struct field.
	if rv.Type().Key().Kind() == reflect.String {
		fields := make(map[string]Kind, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := Reflect(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			fields[iter.Key().String()] = k
		}
		return Struct{Fields: sortedStructFields(fields)}, nil
	}

	var keyKind, valKind Kind
	iter := rv.MapRange()
	for iter.Next() {
		kk, err := Reflect(iter.Key().Interface())
		if err != nil {
			return nil, err
		}
		vk, err := Reflect(iter.Value().Interface())
		if err != nil {
			return nil, err
		}
		if keyKind == nil {
			keyKind, valKind = kk, vk
			continue
		}
		if !keyKind.Match(kk) || !valKind.Match(vk) {
			return nil, fmt.Errorf("kind: heterogeneous mapping is neither struct nor map")
		}
	}
	return Map{Key: keyKind, Value: valKind}, nil
}
