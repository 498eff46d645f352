package converter

import (
	"reflect"
	"strconv"

	"github.com/viant/serializer/encoding/json"
)

var uintptrType = reflect.TypeOf(uintptr(0))

// Pointer writes uintptr values as decimal strings. Addresses are process
// specific, so it never reads them back. It is not part of Defaults.
var Pointer = &json.Converter{
	Name:  "pointer",
	Match: func(t reflect.Type) bool { return t == uintptrType },
	Encode: func(enc *json.Encoder, value reflect.Value) error {
		enc.WriteString(strconv.FormatUint(value.Uint(), 10))
		return nil
	},
	Decode: func(dec *json.Decoder, target reflect.Type) (reflect.Value, error) {
		return reflect.Value{}, json.UnsupportedErrorf("deserializing %s is not supported", target)
	},
}
