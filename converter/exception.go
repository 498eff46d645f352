package converter

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/viant/serializer/encoding/json"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Member is a named value written for an error.
type Member struct {
	Name  string
	Value interface{}
}

// ErrorFields lists the members written for err, in output order.
type ErrorFields func(err error) []Member

// ReflectErrorFields writes Message, Type, the exported fields of the
// underlying struct and Inner (the unwrapped error, nil when absent).
// Function, channel, unsafe pointer and uintptr fields are not portable and are skipped.
func ReflectErrorFields(err error) []Member {
	ret := []Member{
		{Name: "Message", Value: err.Error()},
		{Name: "Type", Value: fmt.Sprintf("%T", err)},
	}
	seen := map[string]bool{"Message": true, "Type": true, "Inner": true}
	rv := reflect.ValueOf(err)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			break
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() || !isPortable(field.Type) || seen[field.Name] {
				continue
			}
			seen[field.Name] = true
			ret = append(ret, Member{Name: field.Name, Value: rv.Field(i).Interface()})
		}
	}
	var inner interface{}
	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		inner = unwrapped
	}
	return append(ret, Member{Name: "Inner", Value: inner})
}

func isPortable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Uintptr:
		return false
	}
	return true
}

// Exception writes errors as objects built by ReflectErrorFields and refuses to read them.
var Exception = NewException(ReflectErrorFields)

// NewException returns an error converter using fields to list the written members.
func NewException(fields ErrorFields) *json.Converter {
	if fields == nil {
		fields = ReflectErrorFields
	}
	return &json.Converter{
		Name:   "exception",
		Match:  func(t reflect.Type) bool { return t.Implements(errorType) },
		Encode: encodeError(fields),
		Decode: func(dec *json.Decoder, target reflect.Type) (reflect.Value, error) {
			return reflect.Value{}, json.UnsupportedErrorf("deserializing errors is not allowed: %s", target)
		},
	}
}

// encodeError writes nothing when null exclusion leaves no member.
func encodeError(fields ErrorFields) json.EncodeFunc {
	return func(enc *json.Encoder, value reflect.Value) error {
		err, ok := value.Interface().(error)
		if !ok || err == nil {
			return nil
		}
		members := fields(err)
		includeNulls := enc.Options().IncludeNulls
		kept := make([]Member, 0, len(members))
		for _, member := range members {
			if !includeNulls && isNilValue(member.Value) {
				continue
			}
			kept = append(kept, member)
		}
		if len(kept) == 0 {
			return nil
		}
		enc.BeginObject()
		for _, member := range kept {
			if err := enc.Field(member.Name, member.Value); err != nil {
				return err
			}
		}
		enc.EndObject()
		return nil
	}
}

func isNilValue(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
