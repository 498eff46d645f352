package serializer

import (
	"time"

	"github.com/viant/serializer/encoding/json"
	"github.com/viant/tagly/format/text"
)

// DefaultIndent is used for pretty output.
const DefaultIndent = "  "

// BaseOptions holds the reader tolerances applied to every call.
type BaseOptions struct {
	AllowTrailingCommas bool
	SkipComments        bool
	NumberFromString    bool
	UnknownFieldPolicy  json.UnknownFieldPolicy
	// MaxDepth limits object and array nesting on read; zero keeps the default.
	MaxDepth int
}

// DefaultBaseOptions returns tolerant reader settings.
func DefaultBaseOptions() *BaseOptions {
	return &BaseOptions{
		AllowTrailingCommas: true,
		SkipComments:        true,
		NumberFromString:    true,
		UnknownFieldPolicy:  json.IgnoreUnknown,
		MaxDepth:            json.DefaultMaxDepth,
	}
}

func (b *BaseOptions) clone() *BaseOptions {
	ret := *b
	return &ret
}

// Config represents serializer configuration
type Config struct {
	DateTimeFormat        string
	IncludeNullProperties bool
	Converters            []*json.Converter
	Base                  *BaseOptions
	// DateTimeLayouts replaces the accepted date time layouts when set.
	DateTimeLayouts []string
	Location        *time.Location
	CaseFormat      text.CaseFormat
	Indent          string
}

func newConfig(converters []*json.Converter) *Config {
	return &Config{
		DateTimeFormat: json.DefaultDateTimeFormat,
		Converters:     converters,
		Base:           DefaultBaseOptions(),
		Location:       time.UTC,
		CaseFormat:     text.CaseFormatUndefined,
		Indent:         DefaultIndent,
	}
}

func (c *Config) clone() *Config {
	ret := *c
	ret.Converters = append([]*json.Converter{}, c.Converters...)
	ret.Base = c.Base.clone()
	if c.DateTimeLayouts != nil {
		ret.DateTimeLayouts = append([]string{}, c.DateTimeLayouts...)
	}
	return &ret
}
