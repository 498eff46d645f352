package json

import (
	"sync"
	"time"

	"github.com/viant/tagly/format/text"
)

const (
	// DefaultDateTimeFormat is the .NET-style pattern used to write time.Time values.
	DefaultDateTimeFormat = "yyyy-MM-ddTHH:mm:ss.ffffffZ"
	// DefaultMaxDepth is the default object and array nesting limit when decoding.
	DefaultMaxDepth = 64
)

type optionFn func(*Options)

func (o optionFn) apply(opts *Options) { o(opts) }

// WithConverters appends converters in order; converters already present are not re-added.
func WithConverters(converters ...*Converter) Option {
	return optionFn(func(o *Options) { o.Registry.Append(converters...) })
}

func WithIncludeNulls(enabled bool) Option {
	return optionFn(func(o *Options) { o.IncludeNulls = enabled })
}

// WithIndent enables indented output; empty indent produces compact output.
func WithIndent(indent string) Option {
	return optionFn(func(o *Options) { o.Indent = indent })
}

func WithTrailingCommas(enabled bool) Option {
	return optionFn(func(o *Options) { o.AllowTrailingCommas = enabled })
}

func WithComments(skip bool) Option {
	return optionFn(func(o *Options) { o.SkipComments = skip })
}

func WithNumberFromString(enabled bool) Option {
	return optionFn(func(o *Options) { o.NumberFromString = enabled })
}

func WithUnknownFieldPolicy(policy UnknownFieldPolicy) Option {
	return optionFn(func(o *Options) { o.UnknownFieldPolicy = policy })
}

// WithDateTimeFormat sets the .NET-style date/time pattern; empty values are ignored.
func WithDateTimeFormat(format string) Option {
	return optionFn(func(o *Options) {
		if format != "" {
			o.DateTimeFormat = format
		}
	})
}

// WithDateTimeLayouts replaces the Go layouts accepted when decoding date/time text.
func WithDateTimeLayouts(layouts ...string) Option {
	return optionFn(func(o *Options) {
		o.DateTimeLayouts = append([]string(nil), layouts...)
	})
}

func WithLocation(loc *time.Location) Option {
	return optionFn(func(o *Options) {
		if loc != nil {
			o.Location = loc
		}
	})
}

func WithCaseFormat(caseFormat text.CaseFormat) Option {
	return optionFn(func(o *Options) { o.CaseFormat = caseFormat })
}

// WithMaxDepth sets the decode nesting limit; non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return optionFn(func(o *Options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	})
}

// WithScannerHooks replaces the whitespace and string scanning hooks used when decoding.
func WithScannerHooks(hooks ScannerHooks) Option {
	return optionFn(func(o *Options) { o.scannerHooks = hooks })
}

func defaultOptions() Options {
	return Options{
		AllowTrailingCommas: true,
		SkipComments:        true,
		NumberFromString:    true,
		UnknownFieldPolicy:  IgnoreUnknown,
		DateTimeFormat:      DefaultDateTimeFormat,
		Location:            time.UTC,
		CaseFormat:          text.CaseFormatUndefined,
		MaxDepth:            DefaultMaxDepth,
	}
}

// NewOptions resolves opts on top of the defaults into a fresh snapshot.
func NewOptions(opts ...Option) *Options {
	result := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&result)
	}
	if result.scannerHooks == nil {
		if result.SkipComments {
			result.scannerHooks = commentScannerHooks{}
		} else {
			result.scannerHooks = scalarScannerHooks{}
		}
	}
	result.resolved = &sync.Map{}
	return &result
}
