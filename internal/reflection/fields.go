package reflection

import "reflect"

// SetField assigns value to the exported field name of target. Target must be
// a non-nil pointer to a struct or an addressable struct value.
func SetField(target reflect.Value, name string, value any) error {
	sv := target
	if sv.Kind() == reflect.Pointer {
		if sv.IsNil() {
			return FieldError{Struct: target.Type(), Field: name}
		}
		sv = sv.Elem()
	}

	if sv.Kind() != reflect.Struct {
		return FieldError{Struct: target.Type(), Field: name}
	}

	f := sv.FieldByName(name)
	if !f.IsValid() || !f.CanSet() {
		return FieldError{Struct: sv.Type(), Field: name}
	}

	v, ok := assign(value, f.Type())
	if !ok {
		return FieldError{Struct: sv.Type(), Field: name, Expected: f.Type(), Actual: reflect.TypeOf(value)}
	}

	f.Set(v)
	return nil
}

// Field returns the exported field name of the struct behind t.
func Field(t reflect.Type, name string) (reflect.StructField, bool) {
	st, ok := StructType(t)
	if !ok {
		return reflect.StructField{}, false
	}

	f, ok := st.FieldByName(name)
	if !ok || !f.IsExported() {
		return reflect.StructField{}, false
	}

	return f, true
}
