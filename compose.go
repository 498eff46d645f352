package serializer

import "github.com/viant/serializer/encoding/json"

// options resolves the configuration into an engine snapshot.
// Converters repeated by identity are registered once.
func (c *Config) options(pretty bool) *json.Options {
	base := c.Base
	if base == nil {
		base = DefaultBaseOptions()
	}
	opts := []json.Option{
		json.WithTrailingCommas(base.AllowTrailingCommas),
		json.WithComments(base.SkipComments),
		json.WithNumberFromString(base.NumberFromString),
		json.WithUnknownFieldPolicy(base.UnknownFieldPolicy),
		json.WithMaxDepth(base.MaxDepth),
		json.WithConverters(c.Converters...),
		json.WithIncludeNulls(c.IncludeNullProperties),
		json.WithDateTimeFormat(c.DateTimeFormat),
		json.WithLocation(c.Location),
		json.WithCaseFormat(c.CaseFormat),
	}
	if c.DateTimeLayouts != nil {
		opts = append(opts, json.WithDateTimeLayouts(c.DateTimeLayouts...))
	}
	if pretty {
		opts = append(opts, json.WithIndent(c.Indent))
	}
	return json.NewOptions(opts...)
}

// compose clones the configuration under the read lock and resolves a per call snapshot.
func (s *Serializer) compose(pretty bool) *json.Options {
	s.mux.RLock()
	config := s.config.clone()
	s.mux.RUnlock()
	return config.options(pretty)
}
