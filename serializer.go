package serializer

import (
	"reflect"
	"sync"

	"github.com/viant/serializer/converter"
	"github.com/viant/serializer/encoding/json"
	ftime "github.com/viant/serializer/format/time"
)

// Serializer encodes and decodes values through its configured converters.
type Serializer struct {
	mux    sync.RWMutex
	config *Config
	enums  *converter.EnumSet
}

var (
	defaultSerializer *Serializer
	defaultOnce       sync.Once
)

// Default returns the process wide serializer, created on first use.
func Default() *Serializer {
	defaultOnce.Do(func() {
		defaultSerializer = New()
	})
	return defaultSerializer
}

// New creates a serializer with the default converters: errors, name/value
// multi-maps, registered enums, date times and IP addresses.
func New(opts ...Option) *Serializer {
	enums := converter.NewEnumSet()
	config := newConfig(converter.Defaults(enums))
	Options(opts).Apply(config)
	return &Serializer{config: config, enums: enums}
}

func orDefault(s *Serializer) *Serializer {
	if s == nil {
		return Default()
	}
	return s
}

// Serialize encodes value; pretty output uses the configured indent.
// A nil value yields a nil result.
func (s *Serializer) Serialize(value interface{}, pretty bool) ([]byte, error) {
	if isNil(value) {
		return nil, nil
	}
	return json.MarshalWith(value, s.compose(pretty))
}

// SerializeString encodes value as a string; a nil value yields "".
func (s *Serializer) SerializeString(value interface{}, pretty bool) (string, error) {
	data, err := s.Serialize(value, pretty)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Deserialize decodes data into dest, a non-nil pointer.
func (s *Serializer) Deserialize(data []byte, dest interface{}) error {
	return json.UnmarshalWith(data, dest, s.compose(false))
}

// DeepCopy copies src into dest by encoding and decoding it. A nil src zeroes dest.
// Values read through asymmetric converters may lose precision or fail to copy.
func (s *Serializer) DeepCopy(src interface{}, dest interface{}) error {
	if isNil(src) {
		rv := reflect.ValueOf(dest)
		if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
			return &json.Error{Op: "decode", Message: "destination must be a non-nil pointer", Err: json.ErrUnsupported}
		}
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		return nil
	}
	data, err := s.Serialize(src, false)
	if err != nil {
		return err
	}
	return s.Deserialize(data, dest)
}

// Deserialize decodes data into a new T; a nil s selects Default.
func Deserialize[T any](s *Serializer, data []byte) (T, error) {
	var ret T
	err := orDefault(s).Deserialize(data, &ret)
	return ret, err
}

// DeserializeString decodes text into a new T; a nil s selects Default.
func DeserializeString[T any](s *Serializer, text string) (T, error) {
	return Deserialize[T](s, []byte(text))
}

// DeepCopy returns a copy of value built from its encoded form; a nil s selects Default.
func DeepCopy[T any](s *Serializer, value T) (T, error) {
	var ret T
	err := orDefault(s).DeepCopy(value, &ret)
	return ret, err
}

// Config returns a copy of the current configuration.
func (s *Serializer) Config() *Config {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.config.clone()
}

func (s *Serializer) DateTimeFormat() string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.config.DateTimeFormat
}

// SetDateTimeFormat replaces the date pattern; an empty or malformed pattern is rejected and the prior one kept.
func (s *Serializer) SetDateTimeFormat(format string) error {
	if format == "" {
		return json.ConfigurationErrorf("date time format cannot be empty")
	}
	if _, err := ftime.Compile(format); err != nil {
		return json.ConfigurationErrorf("invalid date time format %q: %v", format, err)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.config.DateTimeFormat = format
	return nil
}

func (s *Serializer) IncludeNullProperties() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.config.IncludeNullProperties
}

func (s *Serializer) SetIncludeNullProperties(enabled bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.config.IncludeNullProperties = enabled
}

// Converters returns a copy of the converter list in dispatch order.
func (s *Serializer) Converters() []*json.Converter {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return append([]*json.Converter{}, s.config.Converters...)
}

// SetConverters replaces the converter list; nil resets it to empty and nil entries are dropped.
func (s *Serializer) SetConverters(converters []*json.Converter) {
	list := compact(converters)
	s.mux.Lock()
	defer s.mux.Unlock()
	s.config.Converters = list
}

// BaseOptions returns a copy of the reader tolerances.
func (s *Serializer) BaseOptions() *BaseOptions {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.config.Base.clone()
}

// SetBaseOptions replaces the reader tolerances; nil is rejected.
func (s *Serializer) SetBaseOptions(base *BaseOptions) error {
	if base == nil {
		return json.ConfigurationErrorf("base options cannot be nil")
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.config.Base = base.clone()
	return nil
}

// Enums returns the enum set backing the default enum converter.
func (s *Serializer) Enums() *converter.EnumSet {
	return s.enums
}

// RegisterEnum records members of T as written by name; a nil s selects Default.
func RegisterEnum[T converter.Enum](s *Serializer, members ...T) {
	converter.RegisterEnum(orDefault(s).Enums(), members...)
}

func isNil(value interface{}) bool {
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
