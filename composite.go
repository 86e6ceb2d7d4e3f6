package copybook

import (
	"strings"
)

// Fragment defines a field whose value is a complete record of the given
// schema, embedded inline. It occupies schema.Width() characters.
//
//	phone := copybook.MustSchema("Phone",
//		copybook.Integer("AreaCode", 3),
//		copybook.Integer("Prefix", 3),
//		copybook.Integer("LineNumber", 4),
//	)
//	contact := copybook.MustSchema("Contact",
//		copybook.String("Name", 100),
//		copybook.Fragment("PhoneNumber", phone),
//		copybook.String("Email", 100),
//	)
func Fragment(name string, schema *Schema, opts ...Option) *Field {
	f := newField(name, 0, fragmentCodec{}, opts)
	f.schema = schema
	if schema != nil {
		f.width = schema.Width()
	}
	return f
}

// List defines a field made of count consecutive records of the given
// schema, similar to COBOL's OCCURS clause. Its Width is count times the
// schema width.
func List(name string, schema *Schema, count int, opts ...Option) *Field {
	f := newField(name, 0, listCodec{}, opts)
	f.schema = schema
	f.count = count
	return f
}

type fragmentCodec struct{ baseCodec }

func (fragmentCodec) kind() Kind { return KindFragment }

func (fragmentCodec) decode(f *Field, v interface{}) (interface{}, error) {
	var (
		r   *Record
		err error
	)
	switch x := v.(type) {
	case nil:
		r = f.schema.New()
	case string:
		r, err = f.schema.Decode(x)
	case []byte:
		r, err = f.schema.Decode(string(x))
	case *Record:
		if x == nil {
			r = f.schema.New()
		} else if accepts(f, x) {
			r = x
		} else {
			return nil, conversionError(f, v)
		}
	case map[string]interface{}:
		r, err = f.schema.FromMap(x)
	default:
		return nil, conversionError(f, v)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c fragmentCodec) encode(f *Field, v interface{}) (string, error) {
	r, err := c.decode(f, v)
	if err != nil {
		return "", err
	}
	return r.(*Record).Encode()
}

type listCodec struct{ baseCodec }

func (listCodec) kind() Kind { return KindList }

func (listCodec) absent(*Field) interface{} { return []*Record{} }

func (c listCodec) decode(f *Field, v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return []*Record{}, nil
	case string:
		return c.split(f, x)
	case []byte:
		return c.split(f, string(x))
	case []*Record:
		out := make([]*Record, len(x))
		for i, r := range x {
			if !accepts(f, r) {
				return nil, conversionError(f, v)
			}
			out[i] = r
		}
		return out, nil
	case []map[string]interface{}:
		out := make([]*Record, len(x))
		for i, m := range x {
			r, err := f.schema.FromMap(m)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []interface{}:
		return c.sequence(f, x)
	}
	return nil, conversionError(f, v)
}

// sequence converts a mixed sequence. Either every element is a field
// mapping or every element is a record of the nested schema.
func (listCodec) sequence(f *Field, seq []interface{}) ([]*Record, error) {
	maps := true
	for _, e := range seq {
		if _, ok := e.(map[string]interface{}); !ok {
			maps = false
			break
		}
	}
	out := make([]*Record, len(seq))
	for i, e := range seq {
		if maps {
			r, err := f.schema.FromMap(e.(map[string]interface{}))
			if err != nil {
				return nil, err
			}
			out[i] = r
			continue
		}
		r, ok := e.(*Record)
		if !ok || !accepts(f, r) {
			return nil, conversionError(f, seq)
		}
		out[i] = r
	}
	return out, nil
}

// split decodes count consecutive windows of the nested schema width.
func (listCodec) split(f *Field, s string) ([]*Record, error) {
	runes := []rune(s)
	w := f.schema.Width()
	out := make([]*Record, 0, f.count)
	for i := 0; i < f.count; i++ {
		r, err := f.schema.Decode(window(runes, i*w, (i+1)*w))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// encode concatenates the records, appending blank records until there are
// Count of them. The input slice is left untouched.
func (c listCodec) encode(f *Field, v interface{}) (string, error) {
	val, err := c.decode(f, v)
	if err != nil {
		return "", err
	}
	recs := val.([]*Record)

	var b strings.Builder
	for _, r := range recs {
		s, err := r.Encode()
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	for i := len(recs); i < f.count; i++ {
		s, err := f.schema.New().Encode()
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (listCodec) check(f *Field, s string) error {
	w := f.schema.Width()
	n := runeLen(s)
	if n <= f.count*w {
		return nil
	}
	records := n
	if w > 0 {
		records = n / w
	}
	return &LengthError{Field: f.name, Value: s, Width: f.count * w, Count: f.count, Records: records}
}

// accepts reports whether r can stand in for a record of the nested schema:
// its schema must be, or extend, the nested one and keep the same width.
func accepts(f *Field, r *Record) bool {
	return r != nil && r.schema.Is(f.schema) && r.schema.Width() == f.schema.Width()
}

func conversionError(f *Field, v interface{}) error {
	return &ConversionError{Field: f.name, Expected: f.schema.Name() + " record", Value: v}
}
