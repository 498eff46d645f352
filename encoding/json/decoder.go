package json

import (
	"reflect"
)

// TokenKind identifies the JSON value a Decoder holds.
type TokenKind int

const (
	InvalidToken TokenKind = iota
	NullToken
	StringToken
	NumberToken
	BoolToken
	ObjectToken
	ArrayToken
)

func (k TokenKind) String() string {
	switch k {
	case NullToken:
		return "null"
	case StringToken:
		return "string"
	case NumberToken:
		return "number"
	case BoolToken:
		return "bool"
	case ObjectToken:
		return "object"
	case ArrayToken:
		return "array"
	}
	return "invalid"
}

func tokenKindOf(c byte) TokenKind {
	switch {
	case c == 'n':
		return NullToken
	case c == '"':
		return StringToken
	case c == 't' || c == 'f':
		return BoolToken
	case c == '{':
		return ObjectToken
	case c == '[':
		return ArrayToken
	case c == '-' || (c >= '0' && c <= '9'):
		return NumberToken
	}
	return InvalidToken
}

// Decoder holds a single, already scanned JSON value handed to a converter.
type Decoder struct {
	raw     []byte
	options *Options
	layout  string
}

// Raw returns the undecoded JSON text of the value.
func (d *Decoder) Raw() []byte { return d.raw }

// Options returns the snapshot the value is decoded with.
func (d *Decoder) Options() *Options { return d.options }

// Layout returns the Go time layout requested by the enclosing struct field tag, if any.
func (d *Decoder) Layout() string { return d.layout }

func (d *Decoder) Kind() TokenKind {
	if len(d.raw) == 0 {
		return InvalidToken
	}
	return tokenKindOf(d.raw[0])
}

func (d *Decoder) IsNull() bool { return d.Kind() == NullToken }

// Text returns the unescaped content of a string value, or the literal text of
// a number or bool. Other values fail with ErrFormat.
func (d *Decoder) Text() (string, error) {
	switch kind := d.Kind(); kind {
	case StringToken:
		state := newDecodeState(d.raw, d.options)
		return state.parseStringValue()
	case NumberToken, BoolToken:
		return string(d.raw), nil
	default:
		return "", FormatErrorf("expected a JSON string but found %s", kind)
	}
}

// Decode decodes the value into dest, a non-nil pointer, dispatching converters.
// A converter must not decode into a type it matches itself.
func (d *Decoder) Decode(dest interface{}) error {
	return unmarshal(d.raw, dest, d.options)
}

// DecodeValue decodes the value into a new value of type t.
func (d *Decoder) DecodeValue(t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	if err := unmarshal(d.raw, ptr.Interface(), d.options); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}
