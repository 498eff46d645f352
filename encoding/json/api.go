package json

import (
	"bytes"
	stdjson "encoding/json"
	"reflect"
)

// Marshal encodes value with options resolved on top of the defaults.
func Marshal(value interface{}, opts ...Option) ([]byte, error) {
	return MarshalWith(value, NewOptions(opts...))
}

// MarshalWith encodes value with a resolved snapshot. A converter writing
// nothing for the root value yields an empty, non-nil result.
func MarshalWith(value interface{}, options *Options) ([]byte, error) {
	if options == nil {
		options = NewOptions()
	}
	enc := acquireEncoder(options)
	defer releaseEncoder(enc)
	var rv reflect.Value
	if value != nil {
		rv = reflect.ValueOf(value)
	}
	if err := enc.appendValue(rv, ""); err != nil {
		return nil, err
	}
	if options.Indent == "" || len(enc.buf) == 0 {
		return append(make([]byte, 0, len(enc.buf)), enc.buf...), nil
	}
	var out bytes.Buffer
	out.Grow(len(enc.buf) * 2)
	if err := stdjson.Indent(&out, enc.buf, "", options.Indent); err != nil {
		return nil, &Error{Op: "encode", Message: err.Error(), Err: ErrFormat}
	}
	return out.Bytes(), nil
}

// Unmarshal decodes data into dest, a non-nil pointer.
func Unmarshal(data []byte, dest interface{}, opts ...Option) error {
	return UnmarshalWith(data, dest, NewOptions(opts...))
}

// UnmarshalWith decodes data into dest with a resolved snapshot.
func UnmarshalWith(data []byte, dest interface{}, options *Options) error {
	return unmarshal(data, dest, options)
}

func compactJSON(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := stdjson.Compact(&out, data); err != nil {
		return nil, &Error{Op: "encode", Message: "invalid output from MarshalJSON: " + err.Error(), Err: ErrFormat}
	}
	return out.Bytes(), nil
}
