package copybook

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/charlieparkes/go-structs"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const tagName = "copybook"

// fieldTag is the decoded form of a `copybook:"..."` struct tag, e.g.
//
//	Amount float64 `copybook:"type=decimal,width=9,places=3"`
//	Phones []Phone `copybook:"count=3"`
//
// type is inferred from the Go type when omitted.
type fieldTag struct {
	Type     string
	Width    int
	Count    int
	Places   *int
	Format   string
	Truncate bool
	Default  string
}

var schemaCache sync.Map // map[reflect.Type]*Schema

// SchemaOf builds the Schema described by the copybook tags of a struct (or
// pointer to struct). Fields are laid out in struct declaration order and
// untagged fields are ignored. Schemas are cached per type.
func SchemaOf(target interface{}) (*Schema, error) {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Errorf("copybook: cannot build a schema from %T", target)
	}

	return schemaOf(t, map[reflect.Type]bool{})
}

// schemaOf resolves a struct type, tracking the types still being built so
// that a type nesting itself is rejected.
func schemaOf(t reflect.Type, building map[reflect.Type]bool) (*Schema, error) {
	if s, ok := schemaCache.Load(t); ok {
		return s.(*Schema), nil
	}
	if building[t] {
		return nil, errors.Errorf("copybook: recursive type %s", t)
	}
	building[t] = true
	defer delete(building, t)

	s, err := buildSchema(t, building)
	if err != nil {
		return nil, err
	}
	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

func buildSchema(t reflect.Type, building map[reflect.Type]bool) (*Schema, error) {
	target := reflect.New(t).Interface()
	tags := structs.Tags(target, tagName)

	var fields []*Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		val, ok := tags[sf.Name]
		if !ok || len(val) == 0 {
			continue
		}
		var tag fieldTag
		if err := mapstructure.WeakDecode(val, &tag); err != nil {
			return nil, errors.Wrapf(err, "copybook: invalid tag on %s.%s", t.Name(), sf.Name)
		}
		f, err := tag.field(sf, building)
		if err != nil {
			return nil, errors.WithMessagef(err, "copybook: %s.%s", t.Name(), sf.Name)
		}
		fields = append(fields, f)
	}
	return NewSchema(structs.Name(target), fields...)
}

func (tag fieldTag) field(sf reflect.StructField, building map[reflect.Type]bool) (*Field, error) {
	ft := indirectType(sf.Type)

	kind := strings.ToLower(tag.Type)
	if kind == "" {
		kind = inferKind(ft)
	}

	var opts []Option
	if tag.Truncate {
		opts = append(opts, WithAutoTruncate())
	}
	if tag.Places != nil {
		opts = append(opts, WithPlaces(*tag.Places))
	}
	if tag.Format != "" {
		opts = append(opts, WithLayout(tag.Format))
	}

	var f *Field
	switch kind {
	case "string":
		f = String(sf.Name, tag.Width, opts...)
	case "newline":
		f = Newline(sf.Name, opts...)
	case "postalcode":
		f = PostalCode(sf.Name, opts...)
	case "integer", "int":
		f = Integer(sf.Name, tag.Width, opts...)
	case "decimal":
		f = Decimal(sf.Name, tag.Width, opts...)
	case "datetime":
		f = DateTime(sf.Name, tag.Width, opts...)
	case "date":
		f = Date(sf.Name, tag.Width, opts...)
	case "fragment":
		if ft.Kind() != reflect.Struct {
			return nil, errors.Errorf("fragment field must be a struct, not %s", ft)
		}
		nested, err := schemaOf(ft, building)
		if err != nil {
			return nil, err
		}
		f = Fragment(sf.Name, nested, opts...)
	case "list":
		if ft.Kind() != reflect.Slice && ft.Kind() != reflect.Array {
			return nil, errors.Errorf("list field must be a slice or array, not %s", ft)
		}
		et := indirectType(ft.Elem())
		if et.Kind() != reflect.Struct {
			return nil, errors.Errorf("list elements must be structs, not %s", et)
		}
		nested, err := schemaOf(et, building)
		if err != nil {
			return nil, err
		}
		f = List(sf.Name, nested, tag.Count, opts...)
	default:
		return nil, errors.Errorf("unknown field type '%s'", kind)
	}

	if tag.Default != "" {
		def, err := f.Decode(tag.Default)
		if err != nil {
			return nil, err
		}
		// Nested records are copied so instances never share them.
		f.def = func() interface{} { return cloneValue(def) }
	}
	return f, nil
}

var timeType = reflect.TypeOf(time.Time{})

func inferKind(t reflect.Type) string {
	if t == timeType {
		return "datetime"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "decimal"
	case reflect.Struct:
		return "fragment"
	case reflect.Slice, reflect.Array:
		return "list"
	}
	return t.Kind().String()
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// FromStruct builds a record from a struct whose field names match the
// schema. Fragment fields take nested structs and list fields take slices of
// structs; nil pointers leave the field unset, as do zero values of fields
// that have a default.
func (s *Schema) FromStruct(input interface{}) (*Record, error) {
	return recordOf(s, reflect.ValueOf(input))
}

func recordOf(s *Schema, v reflect.Value) (*Record, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return s.New(), nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.Errorf("copybook: cannot build a %s record from %s", s.name, v.Kind())
	}

	r := s.New()
	for _, f := range s.fields {
		fv := v.FieldByName(f.name)
		if !fv.IsValid() || !fv.CanInterface() {
			continue
		}
		if f.HasDefault() && fv.IsZero() {
			continue
		}
		val, set, err := structValue(f, fv)
		if err != nil {
			return nil, err
		}
		if !set {
			continue
		}
		if err := r.Set(f.name, val); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func structValue(f *Field, v reflect.Value) (interface{}, bool, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false, nil
		}
		v = v.Elem()
	}

	switch f.Kind() {
	case KindFragment:
		r, err := recordOf(f.schema, v)
		if err != nil {
			return nil, false, err
		}
		return r, true, nil
	case KindList:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return nil, false, &ConversionError{Field: f.name, Expected: f.schema.name + " records", Value: v.Interface()}
		}
		recs := make([]*Record, v.Len())
		for i := range recs {
			r, err := recordOf(f.schema, v.Index(i))
			if err != nil {
				return nil, false, err
			}
			recs[i] = r
		}
		return recs, true, nil
	}
	return v.Interface(), true, nil
}
