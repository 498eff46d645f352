package converter

import (
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/viant/serializer/encoding/json"
)

// NameValues is an insertion ordered multi-map with case-insensitive keys.
// The first spelling of a key is kept. The zero value is ready to use.
type NameValues struct {
	keys   []string
	values map[string][]string
}

// NewNameValues returns an empty collection.
func NewNameValues() *NameValues {
	return &NameValues{values: map[string][]string{}}
}

func (n *NameValues) slot(key string) string {
	folded := strings.ToLower(key)
	if n.values == nil {
		n.values = map[string][]string{}
	}
	if _, ok := n.values[folded]; !ok {
		n.keys = append(n.keys, key)
		n.values[folded] = nil
	}
	return folded
}

// Add appends value to key.
func (n *NameValues) Add(key, value string) {
	folded := n.slot(key)
	n.values[folded] = append(n.values[folded], value)
}

// Set replaces the values of key.
func (n *NameValues) Set(key string, values ...string) {
	folded := n.slot(key)
	n.values[folded] = append([]string(nil), values...)
}

// Get returns the first value of key or "".
func (n *NameValues) Get(key string) string {
	if values := n.Values(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// Values returns a copy of the values of key.
func (n *NameValues) Values(key string) []string {
	if n == nil || n.values == nil {
		return nil
	}
	values, ok := n.values[strings.ToLower(key)]
	if !ok {
		return nil
	}
	return append([]string{}, values...)
}

// Keys returns the keys in insertion order.
func (n *NameValues) Keys() []string {
	if n == nil {
		return nil
	}
	return append([]string(nil), n.keys...)
}

func (n *NameValues) Del(key string) {
	if n == nil || n.values == nil {
		return
	}
	folded := strings.ToLower(key)
	if _, ok := n.values[folded]; !ok {
		return
	}
	delete(n.values, folded)
	for i, candidate := range n.keys {
		if strings.ToLower(candidate) == folded {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

func (n *NameValues) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// Joined returns the non-empty values of key joined with ", "; ok is false when there are none.
func (n *NameValues) Joined(key string) (string, bool) {
	return joinValues(n.Values(key))
}

func joinValues(values []string) (string, bool) {
	var nonEmpty []string
	for _, value := range values {
		if value != "" {
			nonEmpty = append(nonEmpty, value)
		}
	}
	if len(nonEmpty) == 0 {
		return "", false
	}
	return strings.Join(nonEmpty, ", "), true
}

var (
	nameValuesType    = reflect.TypeOf(NameValues{})
	nameValuesPtrType = reflect.TypeOf(&NameValues{})
	urlValuesType     = reflect.TypeOf(url.Values{})
	headerType        = reflect.TypeOf(http.Header{})
)

// NameValue writes multi-maps as objects of joined values. It is write only.
var NameValue = &json.Converter{
	Name: "namevalue",
	Match: func(t reflect.Type) bool {
		return t == nameValuesType || t == nameValuesPtrType || t == urlValuesType || t == headerType
	},
	Encode: encodeNameValues,
	Decode: func(dec *json.Decoder, target reflect.Type) (reflect.Value, error) {
		return reflect.Value{}, json.UnsupportedErrorf("deserializing %s is not supported", target)
	},
}

// encodeNameValues emits every key, writing null for keys without a non-empty value.
func encodeNameValues(enc *json.Encoder, value reflect.Value) error {
	keys, lookup := nameValuesView(value)
	enc.BeginObject()
	for _, key := range keys {
		enc.Key(key)
		if joined, ok := joinValues(lookup(key)); ok {
			enc.WriteString(joined)
		} else {
			enc.WriteNull()
		}
	}
	enc.EndObject()
	return nil
}

func nameValuesView(value reflect.Value) ([]string, func(string) []string) {
	switch actual := value.Interface().(type) {
	case *NameValues:
		return actual.Keys(), actual.Values
	case NameValues:
		return actual.Keys(), actual.Values
	}
	values := value.Convert(urlValuesType).Interface().(url.Values)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, func(key string) []string { return values[key] }
}
