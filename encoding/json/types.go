package json

import (
	"reflect"
	"sync"
	"time"

	"github.com/viant/tagly/format/text"
)

// UnknownFieldPolicy controls unknown key handling.
type UnknownFieldPolicy int

const (
	IgnoreUnknown UnknownFieldPolicy = iota
	ErrorOnUnknown
)

// EncodeFunc writes value with enc; writing nothing is a valid outcome.
type EncodeFunc func(enc *Encoder, value reflect.Value) error

// DecodeFunc builds a value assignable to target from the token held by dec.
type DecodeFunc func(dec *Decoder, target reflect.Type) (reflect.Value, error)

// Converter pairs an encode and decode strategy for a family of types.
// Converters are compared by pointer identity.
type Converter struct {
	Name   string
	Match  func(t reflect.Type) bool
	Encode EncodeFunc
	Decode DecodeFunc
}

// Option mutates runtime options.
type Option interface{ apply(*Options) }

// Options is a resolved, per-call snapshot of engine behavior.
type Options struct {
	Registry            Registry
	IncludeNulls        bool
	Indent              string
	AllowTrailingCommas bool
	SkipComments        bool
	NumberFromString    bool
	UnknownFieldPolicy  UnknownFieldPolicy
	DateTimeFormat      string
	DateTimeLayouts     []string
	Location            *time.Location
	CaseFormat          text.CaseFormat
	// MaxDepth limits object and array nesting when decoding.
	MaxDepth int

	scannerHooks ScannerHooks
	resolved     *sync.Map // map[reflect.Type]*Converter
}

// Resolve returns the first converter matching t. Snapshots built by NewOptions
// cache the answer and are safe to share between goroutines.
func (o *Options) Resolve(t reflect.Type) *Converter {
	if o == nil || o.Registry.Len() == 0 {
		return nil
	}
	if o.resolved == nil {
		return o.Registry.Resolve(t)
	}
	if c, ok := o.resolved.Load(t); ok {
		return c.(*Converter)
	}
	c := o.Registry.Resolve(t)
	o.resolved.Store(t, c)
	return c
}
