// Package copybook encodes and decodes fixed-width text records, where every
// field occupies a fixed number of characters with no delimiters.
//
// A Schema is an ordered list of typed fields. Scalar fields (String,
// Integer, Decimal, DateTime, ...) convert between Go values and padded
// text; Fragment and List fields embed whole records of another schema.
package copybook

import (
	"fmt"
)

// Kind identifies the conversion a field performs.
type Kind int

const (
	KindString Kind = iota
	KindNewline
	KindPostalCode
	KindInteger
	KindDecimal
	KindDateTime
	KindDate
	KindFragment
	KindList
)

var kindNames = map[Kind]string{
	KindString:     "string",
	KindNewline:    "newline",
	KindPostalCode: "postalcode",
	KindInteger:    "integer",
	KindDecimal:    "decimal",
	KindDateTime:   "datetime",
	KindDate:       "date",
	KindFragment:   "fragment",
	KindList:       "list",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

const (
	// DefaultPlaces is the number of decimal places used by Decimal fields.
	DefaultPlaces = 2
	// DefaultLayout is the time layout used by DateTime and Date fields.
	DefaultLayout = "2006-01-02"
)

// Field is a fixed-width field definition. A Field only carries metadata and
// conversion rules; values live on the Record. Fields must not be changed
// once they are registered with a Schema.
type Field struct {
	name         string
	index        int
	width        int
	count        int
	autoTruncate bool
	def          func() interface{}
	places       int
	layout       string
	schema       *Schema
	codec        codec
}

// Option configures a Field at definition time.
type Option func(*Field)

// WithDefault sets a static default returned for unset values.
func WithDefault(v interface{}) Option {
	return func(f *Field) {
		f.def = func() interface{} { return v }
	}
}

// WithDefaultFunc sets a default factory. It is called every time a default
// is needed and its result is never cached.
func WithDefaultFunc(fn func() interface{}) Option {
	return func(f *Field) {
		f.def = fn
	}
}

// WithAutoTruncate silently cuts encoded values down to the field width
// instead of failing with a LengthError.
func WithAutoTruncate() Option {
	return func(f *Field) {
		f.autoTruncate = true
	}
}

// WithPlaces sets the number of decimal places of a Decimal field.
func WithPlaces(n int) Option {
	return func(f *Field) {
		f.places = n
	}
}

// WithLayout sets the time layout of a DateTime or Date field.
func WithLayout(layout string) Option {
	return func(f *Field) {
		f.layout = layout
	}
}

func newField(name string, width int, c codec, opts []Option) *Field {
	f := &Field{
		name:   name,
		index:  -1,
		width:  width,
		count:  1,
		places: DefaultPlaces,
		layout: DefaultLayout,
		codec:  c,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Index returns the creation index assigned when the field was registered
// with a Schema. Unregistered fields report -1.
func (f *Field) Index() int { return f.index }

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.codec.kind() }

// Width returns the number of characters the field occupies. For list
// fields this is Count() times the nested schema width.
func (f *Field) Width() int {
	if f.codec.kind() == KindList {
		return f.count * f.schema.Width()
	}
	return f.width
}

// Count returns how many times a list field repeats its nested record.
// It is 1 for every other kind.
func (f *Field) Count() int { return f.count }

// AutoTruncate reports whether over-length values are truncated on encode.
func (f *Field) AutoTruncate() bool { return f.autoTruncate }

// Places returns the decimal places of a Decimal field.
func (f *Field) Places() int { return f.places }

// Layout returns the time layout of a DateTime or Date field.
func (f *Field) Layout() string { return f.layout }

// Schema returns the nested schema of a fragment or list field, or nil.
func (f *Field) Schema() *Schema { return f.schema }

// HasDefault reports whether a default was configured.
func (f *Field) HasDefault() bool { return f.def != nil }

// Default returns the value of an unset field: the configured default when
// there is one, otherwise the kind's absent value.
func (f *Field) Default() interface{} {
	if f.def != nil {
		return f.def()
	}
	return f.codec.absent(f)
}

// Decode converts text, or an already typed value, to the field's value.
// A nil input yields the kind's absent value.
func (f *Field) Decode(v interface{}) (interface{}, error) {
	return f.codec.decode(f, v)
}

// Encode converts a value to its fixed-width text. The result is not checked
// against the field width; see EncodeValidated.
func (f *Field) Encode(v interface{}) (string, error) {
	return f.codec.encode(f, v)
}

// EncodeValidated encodes v and enforces the field width. Auto-truncating
// fields are cut to width, otherwise an over-length result is a
// *LengthError. Shorter results are returned as they are.
func (f *Field) EncodeValidated(v interface{}) (string, error) {
	s, err := f.codec.encode(f, v)
	if err != nil {
		return "", err
	}
	if f.autoTruncate {
		s = truncate(s, f.Width())
	}
	if err := f.codec.check(f, s); err != nil {
		return "", err
	}
	return s, nil
}

// clone returns a copy of f carrying the given creation index.
func (f *Field) clone(index int) *Field {
	c := *f
	c.index = index
	return &c
}

// codec is the conversion capability of a field. The set of implementations
// is closed; see scalar.go and composite.go.
type codec interface {
	kind() Kind
	absent(f *Field) interface{}
	decode(f *Field, v interface{}) (interface{}, error)
	encode(f *Field, v interface{}) (string, error)
	check(f *Field, s string) error
}

// baseCodec provides the absent value and length check shared by most kinds.
type baseCodec struct{}

func (baseCodec) absent(*Field) interface{} { return nil }

func (baseCodec) check(f *Field, s string) error {
	if runeLen(s) > f.Width() {
		return &LengthError{Field: f.name, Value: s, Width: f.Width()}
	}
	return nil
}

// toText renders a value as text for string-like fields.
func toText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
