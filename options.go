package serializer

import (
	"time"

	"github.com/viant/serializer/converter"
	"github.com/viant/serializer/encoding/json"
	"github.com/viant/tagly/format/text"
)

// Option serializer option
type Option func(c *Config)

// Options represents serializer options
type Options []Option

// Apply applies options
func (o Options) Apply(c *Config) {
	if len(o) == 0 {
		return
	}
	for _, opt := range o {
		if opt != nil {
			opt(c)
		}
	}
}

// WithDateTimeFormat sets the .NET-style pattern used to write dates; empty format is ignored.
func WithDateTimeFormat(format string) Option {
	return func(c *Config) {
		if format != "" {
			c.DateTimeFormat = format
		}
	}
}

// WithIncludeNullProperties controls whether null members are written.
func WithIncludeNullProperties(enabled bool) Option {
	return func(c *Config) {
		c.IncludeNullProperties = enabled
	}
}

// WithConverters replaces the converter list; nil entries are dropped.
func WithConverters(converters ...*json.Converter) Option {
	return func(c *Config) {
		c.Converters = compact(converters)
	}
}

// WithBaseOptions sets reader tolerances; nil is ignored.
func WithBaseOptions(base *BaseOptions) Option {
	return func(c *Config) {
		if base != nil {
			c.Base = base.clone()
		}
	}
}

// WithDateTimeLayouts replaces the Go layouts accepted when reading dates.
func WithDateTimeLayouts(layouts ...string) Option {
	return func(c *Config) {
		c.DateTimeLayouts = append([]string{}, layouts...)
	}
}

// WithLocation sets the location dates are written in and read with; nil is ignored.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		if loc != nil {
			c.Location = loc
		}
	}
}

// WithCaseFormat sets the member name case for fields without an explicit name.
func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return func(c *Config) {
		c.CaseFormat = caseFormat
	}
}

// WithIndent sets the pretty output indentation.
func WithIndent(indent string) Option {
	return func(c *Config) {
		c.Indent = indent
	}
}

// WithErrorFields replaces the default error converter with one listing members with fields.
func WithErrorFields(fields converter.ErrorFields) Option {
	return func(c *Config) {
		replacement := converter.NewException(fields)
		for i, candidate := range c.Converters {
			if candidate == converter.Exception {
				c.Converters[i] = replacement
			}
		}
	}
}

func compact(converters []*json.Converter) []*json.Converter {
	ret := make([]*json.Converter, 0, len(converters))
	for _, candidate := range converters {
		if candidate != nil {
			ret = append(ret, candidate)
		}
	}
	return ret
}
