package json

import "reflect"

// Registry is an ordered converter list; the first entry matching a type wins,
// so specific converters must be registered before generic fallbacks.
type Registry struct {
	converters []*Converter
}

// NewRegistry returns a registry holding converters in the supplied order.
func NewRegistry(converters ...*Converter) *Registry {
	ret := &Registry{}
	ret.Append(converters...)
	return ret
}

// Append adds converters, skipping nil entries and entries already registered.
func (r *Registry) Append(converters ...*Converter) {
	for _, candidate := range converters {
		if candidate == nil || r.Contains(candidate) {
			continue
		}
		r.converters = append(r.converters, candidate)
	}
}

// Contains reports whether the very same converter is registered.
func (r *Registry) Contains(converter *Converter) bool {
	for _, c := range r.converters {
		if c == converter {
			return true
		}
	}
	return false
}

// Resolve returns the first converter whose predicate matches t, or nil.
func (r *Registry) Resolve(t reflect.Type) *Converter {
	if r == nil || t == nil {
		return nil
	}
	for _, c := range r.converters {
		if c.Match != nil && c.Match(t) {
			return c
		}
	}
	return nil
}

// Converters returns a copy of the registered converters.
func (r *Registry) Converters() []*Converter {
	if r == nil || len(r.converters) == 0 {
		return nil
	}
	ret := make([]*Converter, len(r.converters))
	copy(ret, r.converters)
	return ret
}

// Len returns the number of registered converters.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.converters)
}
