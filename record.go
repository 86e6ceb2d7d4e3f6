package copybook

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Record is one instance of a Schema. Values are stored decoded; reading an
// unset field yields its default.
type Record struct {
	schema *Schema
	values map[string]interface{}
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of the named field, or the field default when the
// field has not been set.
func (r *Record) Get(name string) (interface{}, error) {
	f, ok := r.schema.Field(name)
	if !ok {
		return nil, errors.Errorf("copybook: tried to get field '%s' which does not exist in %s", name, r.schema.name)
	}
	return r.get(f), nil
}

func (r *Record) get(f *Field) interface{} {
	if v, ok := r.values[f.name]; ok {
		return v
	}
	return f.Default()
}

// Set decodes v with the named field and stores the result.
func (r *Record) Set(name string, v interface{}) error {
	f, ok := r.schema.Field(name)
	if !ok {
		return errors.Errorf("copybook: tried to set field '%s' which does not exist in %s", name, r.schema.name)
	}
	val, err := f.Decode(v)
	if err != nil {
		return err
	}
	r.values[name] = val
	return nil
}

// IsSet reports whether the named field holds a value of its own rather
// than its default.
func (r *Record) IsSet(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Encode returns the fixed-width text of the record: every field's
// validated encoding, in declaration order.
func (r *Record) Encode() (string, error) {
	var b strings.Builder
	for _, f := range r.schema.fields {
		s, err := f.EncodeValidated(r.get(f))
		if err != nil {
			return "", errors.WithMessagef(err, "encode %s", r.schema.name)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// Map returns the record's values keyed by field name. Nested records are
// returned as maps as well.
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.schema.fields))
	for _, f := range r.schema.fields {
		switch v := r.get(f).(type) {
		case *Record:
			m[f.name] = v.Map()
		case []*Record:
			l := make([]map[string]interface{}, len(v))
			for i, sub := range v {
				l[i] = sub.Map()
			}
			m[f.name] = l
		case nil:
			if f.Kind() == KindFragment {
				m[f.name] = f.schema.New().Map()
				continue
			}
			m[f.name] = nil
		default:
			m[f.name] = v
		}
	}
	return m
}

// Unmarshal copies the record's values into the struct pointed to by
// output, matching field names to struct fields.
func (r *Record) Unmarshal(output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(r.Map()); err != nil {
		return errors.WithMessagef(err, "unmarshal %s", r.schema.name)
	}
	return nil
}

// clone returns a copy of r whose nested records are copied as well.
func (r *Record) clone() *Record {
	c := &Record{schema: r.schema, values: make(map[string]interface{}, len(r.values))}
	for k, v := range r.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v interface{}) interface{} {
	switch x := v.(type) {
	case *Record:
		if x == nil {
			return x
		}
		return x.clone()
	case []*Record:
		out := make([]*Record, len(x))
		for i, r := range x {
			if r != nil {
				out[i] = r.clone()
			}
		}
		return out
	}
	return v
}
