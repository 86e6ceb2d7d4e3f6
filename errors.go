package copybook

import "fmt"

// LengthError describes an encoded value that does not fit in its field.
type LengthError struct {
	Field string // name of the field (or schema) being encoded
	Value string // the offending encoded content
	Width int    // allowed width in characters

	// Count and Records are set for list fields only: the allowed number of
	// records and the number the offending content implies.
	Count   int
	Records int
}

func (e *LengthError) Error() string {
	if e.Count > 0 {
		return fmt.Sprintf("copybook: '%s' contains %d records but can only have %d", e.Field, e.Records, e.Count)
	}
	return fmt.Sprintf("copybook: '%s' value '%s' is longer than %d chars", e.Field, e.Value, e.Width)
}

// ConversionError describes a decode input whose shape has no conversion
// rule for the field.
type ConversionError struct {
	Field    string      // name of the field
	Expected string      // what the field accepts, e.g. a nested schema name
	Value    interface{} // the rejected input
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("copybook: '%s' cannot convert %T, expected %s", e.Field, e.Value, e.Expected)
}

// ParseError describes text that could not be parsed as a number or date.
type ParseError struct {
	Field string // name of the field
	Value string // the raw text
	Err   error  // error returned by the underlying parser
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("copybook: cannot parse '%s' for '%s': %v", e.Value, e.Field, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Err }

// Cause returns the underlying parser error.
func (e *ParseError) Cause() error { return e.Err }
