package copybook

import (
	"github.com/pkg/errors"
)

// Schema is an ordered set of named fields describing one fixed-width record
// layout. Schemas are immutable once built and safe for concurrent use.
type Schema struct {
	name   string
	parent *Schema
	fields []*Field
	pos    map[string]int
	width  int
	next   int
}

// NewSchema registers fields in declaration order. Each field is copied and
// given a creation index equal to its position, so a *Field may be shared
// between schemas.
func NewSchema(name string, fields ...*Field) (*Schema, error) {
	s := &Schema{
		name: name,
		pos:  make(map[string]int, len(fields)),
	}
	if err := s.register(fields); err != nil {
		return nil, err
	}
	return s, nil
}

// MustSchema is like NewSchema but panics if the fields are invalid. It is
// meant for package level schema declarations.
func MustSchema(name string, fields ...*Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Extend derives a new schema from s. Fields named like an inherited field
// replace it at the same position and receive a new creation index; other
// fields are appended.
func (s *Schema) Extend(name string, fields ...*Field) (*Schema, error) {
	sub := &Schema{
		name:   name,
		parent: s,
		fields: make([]*Field, len(s.fields)),
		pos:    make(map[string]int, len(s.fields)+len(fields)),
		next:   s.next,
	}
	copy(sub.fields, s.fields)
	for k, v := range s.pos {
		sub.pos[k] = v
	}
	if err := sub.register(fields); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Schema) register(fields []*Field) error {
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == nil {
			return errors.Errorf("copybook: schema %s has a nil field", s.name)
		}
		if f.name == "" {
			return errors.Errorf("copybook: schema %s has a field without a name", s.name)
		}
		if declared[f.name] {
			return errors.Errorf("copybook: schema %s declares field '%s' twice", s.name, f.name)
		}
		declared[f.name] = true
		if f.Kind() == KindList && f.count < 1 {
			return errors.Errorf("copybook: list field '%s' must occur at least once", f.name)
		}
		if (f.Kind() == KindFragment || f.Kind() == KindList) && f.schema == nil {
			return errors.Errorf("copybook: field '%s' has no nested schema", f.name)
		}
		if f.Width() < 1 {
			return errors.Errorf("copybook: field '%s' must have a positive width", f.name)
		}

		c := f.clone(s.next)
		s.next++
		if i, ok := s.pos[f.name]; ok {
			s.fields[i] = c
			continue
		}
		s.pos[f.name] = len(s.fields)
		s.fields = append(s.fields, c)
	}

	s.width = 0
	for _, f := range s.fields {
		s.width += f.Width()
	}
	return nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Width returns the record width in characters.
func (s *Schema) Width() int { return s.width }

// Parent returns the schema s was extended from, or nil.
func (s *Schema) Parent() *Schema { return s.parent }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.pos[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Is reports whether s is other or was extended from it.
func (s *Schema) Is(other *Schema) bool {
	for c := s; c != nil; c = c.parent {
		if c == other {
			return true
		}
	}
	return false
}

// New returns a blank record. Every field reports its default until set.
func (s *Schema) New() *Record {
	return &Record{
		schema: s,
		values: make(map[string]interface{}, len(s.fields)),
	}
}

// FromMap builds a record from a field name to value mapping. Each value is
// decoded by its field.
func (s *Schema) FromMap(m map[string]interface{}) (*Record, error) {
	r := s.New()
	for name, v := range m {
		if err := r.Set(name, v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Decode parses one record. The text is sliced into consecutive windows of
// each field's width; text shorter than the schema leaves the trailing
// windows empty. Text longer than the schema is a *LengthError.
func (s *Schema) Decode(text string) (*Record, error) {
	runes := []rune(text)
	if len(runes) > s.width {
		return nil, &LengthError{Field: s.name, Value: text, Width: s.width}
	}

	r := s.New()
	start := 0
	for _, f := range s.fields {
		end := start + f.Width()
		v, err := f.Decode(window(runes, start, end))
		if err != nil {
			return nil, errors.WithMessagef(err, "decode %s", s.name)
		}
		r.values[f.name] = v
		start = end
	}
	return r, nil
}

// window returns runes[start:end] as a string, clamped to the slice bounds.
func window(runes []rune, start, end int) string {
	if start > len(runes) {
		start = len(runes)
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
