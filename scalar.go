package copybook

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// PostalCodeWidth is the fixed width of a PostalCode field.
const PostalCodeWidth = 9

// String defines a space-padded text field. Decoding strips trailing
// whitespace.
func String(name string, width int, opts ...Option) *Field {
	return newField(name, width, stringCodec{}, opts)
}

// Newline defines a one character field holding the record terminator. Its
// default is "\n" and decoding keeps the text as it is.
func Newline(name string, opts ...Option) *Field {
	return newField(name, 1, newlineCodec{}, append([]Option{WithDefault("\n")}, opts...))
}

// PostalCode defines a nine character postal code. Numeric codes are
// zero-filled on the right, anything else is space-padded.
func PostalCode(name string, opts ...Option) *Field {
	return newField(name, PostalCodeWidth, postalCodeCodec{}, opts)
}

// Integer defines a zero-filled integer field. Blank text decodes to nil and
// nil encodes as zero.
func Integer(name string, width int, opts ...Option) *Field {
	return newField(name, width, integerCodec{}, opts)
}

// Decimal defines a fixed-point number field with WithPlaces decimal places
// (DefaultPlaces when not set).
func Decimal(name string, width int, opts ...Option) *Field {
	return newField(name, width, decimalCodec{}, opts)
}

// DateTime defines a timestamp field formatted with WithLayout
// (DefaultLayout when not set).
func DateTime(name string, width int, opts ...Option) *Field {
	return newField(name, width, dateTimeCodec{}, opts)
}

// Date is a DateTime field whose decoded values are truncated to midnight.
func Date(name string, width int, opts ...Option) *Field {
	return newField(name, width, dateTimeCodec{dateOnly: true}, opts)
}

type stringCodec struct{ baseCodec }

func (stringCodec) kind() Kind { return KindString }

func (stringCodec) decode(_ *Field, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return trimRight(toText(v)), nil
}

func (stringCodec) encode(f *Field, v interface{}) (string, error) {
	if v == nil {
		return PadString(f.width, ""), nil
	}
	return PadString(f.width, toText(v)), nil
}

type newlineCodec struct{ stringCodec }

func (newlineCodec) kind() Kind { return KindNewline }

func (newlineCodec) decode(_ *Field, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	return toText(v), nil
}

type postalCodeCodec struct{ stringCodec }

func (postalCodeCodec) kind() Kind { return KindPostalCode }

func (postalCodeCodec) encode(f *Field, v interface{}) (string, error) {
	if v == nil || IsBlank(v) {
		return PadString(f.width, " "), nil
	}
	s := toText(v)
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return PadRight(s, f.width, ZERO), nil
	}
	return PadString(f.width, s), nil
}

type integerCodec struct{ baseCodec }

func (integerCodec) kind() Kind { return KindInteger }

var maxInt64Float = math.Ldexp(1, 63)

func (integerCodec) decode(f *Field, v interface{}) (interface{}, error) {
	if v == nil || IsBlank(v) {
		return nil, nil
	}
	switch t := v.(type) {
	case string, []byte:
		s := toText(t)
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, &ParseError{Field: f.name, Value: s, Err: err}
		}
		return n, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), nil
		}
	case reflect.Float32, reflect.Float64:
		// int64 covers [-2^63, 2^63); NaN fails both comparisons.
		if x := rv.Float(); x >= -maxInt64Float && x < maxInt64Float {
			return int64(x), nil
		}
	}
	return nil, &ConversionError{Field: f.name, Expected: "integer", Value: v}
}

func (c integerCodec) encode(f *Field, v interface{}) (string, error) {
	n, err := c.decode(f, v)
	if err != nil {
		return "", err
	}
	if n == nil {
		n = int64(0)
	}
	return PadInteger(f.width, n.(int64), Leading), nil
}

type decimalCodec struct{ baseCodec }

func (decimalCodec) kind() Kind { return KindDecimal }

func (decimalCodec) decode(f *Field, v interface{}) (interface{}, error) {
	if v == nil || IsBlank(v) {
		return nil, nil
	}
	switch t := v.(type) {
	case string, []byte:
		s := toText(t)
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, &ParseError{Field: f.name, Value: s, Err: err}
		}
		return n, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, &ConversionError{Field: f.name, Expected: "decimal", Value: v}
}

func (c decimalCodec) encode(f *Field, v interface{}) (string, error) {
	n, err := c.decode(f, v)
	if err != nil {
		return "", err
	}
	if n == nil {
		n = float64(0)
	}
	return PadDecimal(f.width, n.(float64), f.places), nil
}

type dateTimeCodec struct {
	baseCodec
	dateOnly bool
}

func (c dateTimeCodec) kind() Kind {
	if c.dateOnly {
		return KindDate
	}
	return KindDateTime
}

func (c dateTimeCodec) decode(f *Field, v interface{}) (interface{}, error) {
	var t time.Time
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		t = *x
	case string, []byte:
		s := toText(x)
		if IsBlank(s) {
			return nil, nil
		}
		parsed, err := time.Parse(f.layout, trimRight(s))
		if err != nil {
			return nil, &ParseError{Field: f.name, Value: s, Err: err}
		}
		t = parsed
	default:
		return nil, &ConversionError{Field: f.name, Expected: "time", Value: v}
	}
	if c.dateOnly {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return t, nil
}

func (c dateTimeCodec) encode(f *Field, v interface{}) (string, error) {
	t, err := c.decode(f, v)
	if err != nil {
		return "", err
	}
	if t == nil || t.(time.Time).IsZero() {
		return PadString(f.width, ""), nil
	}
	return t.(time.Time).Format(f.layout), nil
}
