package converter

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/viant/serializer/encoding/json"
)

// Integer is the set of integer kinds an enum may be backed by.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Enum is an integer backed type with symbolic member names.
type Enum interface {
	Integer
	fmt.Stringer
}

type enumType struct {
	names    map[string]string // numeric text -> name
	byName   map[string]reflect.Value
	byFold   map[string]reflect.Value
	byNumber map[string]reflect.Value
}

// EnumSet records enum types written by their symbolic names.
type EnumSet struct {
	mux       sync.RWMutex
	types     map[reflect.Type]*enumType
	converter *json.Converter
}

// NewEnumSet returns an empty set.
func NewEnumSet() *EnumSet {
	ret := &EnumSet{types: map[reflect.Type]*enumType{}}
	ret.converter = &json.Converter{
		Name:   "enum",
		Match:  func(t reflect.Type) bool { return ret.lookup(t) != nil },
		Encode: ret.encode,
		Decode: ret.decode,
	}
	return ret
}

// RegisterEnum records members of T; names come from String().
func RegisterEnum[T Enum](set *EnumSet, members ...T) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	set.mux.Lock()
	defer set.mux.Unlock()
	entry, ok := set.types[rt]
	if !ok {
		entry = &enumType{
			names:    map[string]string{},
			byName:   map[string]reflect.Value{},
			byFold:   map[string]reflect.Value{},
			byNumber: map[string]reflect.Value{},
		}
		set.types[rt] = entry
	}
	for _, member := range members {
		value := reflect.ValueOf(member)
		name := member.String()
		number := numericText(value)
		entry.names[number] = name
		entry.byName[name] = value
		entry.byNumber[number] = value
		if folded := strings.ToLower(name); !hasKey(entry.byFold, folded) {
			entry.byFold[folded] = value
		}
	}
}

// Converter returns the converter matching the registered types. It keeps its identity for the set lifetime.
func (s *EnumSet) Converter() *json.Converter { return s.converter }

// Has reports whether t was registered.
func (s *EnumSet) Has(t reflect.Type) bool { return s.lookup(t) != nil }

func (s *EnumSet) lookup(t reflect.Type) *enumType {
	if s == nil {
		return nil
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.types[t]
}

func (s *EnumSet) encode(enc *json.Encoder, value reflect.Value) error {
	entry := s.lookup(value.Type())
	number := numericText(value)
	s.mux.RLock()
	name, ok := entry.names[number]
	s.mux.RUnlock()
	if ok {
		enc.WriteString(name)
		return nil
	}
	enc.WriteRaw([]byte(number))
	return nil
}

// decode accepts a member name (exact, then case-insensitive) or the number of a defined member.
func (s *EnumSet) decode(dec *json.Decoder, target reflect.Type) (reflect.Value, error) {
	entry := s.lookup(target)
	if entry == nil {
		return reflect.Value{}, json.UnsupportedErrorf("%s is not a registered enum", target)
	}
	kind := dec.Kind()
	if kind != json.StringToken && kind != json.NumberToken {
		return reflect.Value{}, json.FormatErrorf("the JSON value %s could not be converted to %s", dec.Raw(), target)
	}
	text, err := dec.Text()
	if err != nil {
		return reflect.Value{}, err
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	if kind == json.StringToken {
		if value, ok := entry.byName[text]; ok {
			return value, nil
		}
		if value, ok := entry.byFold[strings.ToLower(text)]; ok {
			return value, nil
		}
	}
	if number, ok := canonicalNumber(text, target); ok {
		if value, ok := entry.byNumber[number]; ok {
			return value, nil
		}
	}
	return reflect.Value{}, json.FormatErrorf("the JSON value %q could not be converted to %s", text, target)
}

func hasKey(values map[string]reflect.Value, key string) bool {
	_, ok := values[key]
	return ok
}

func numericText(value reflect.Value) string {
	switch value.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(value.Uint(), 10)
	}
	return strconv.FormatInt(value.Int(), 10)
}

func canonicalNumber(text string, target reflect.Type) (string, bool) {
	switch target.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatUint(n, 10), true
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
