package converter

import (
	"reflect"
	"time"

	"github.com/viant/serializer/encoding/json"
	ftime "github.com/viant/serializer/format/time"
)

var timeType = reflect.TypeOf(time.Time{})

// DateTime writes time.Time values with the configured date time pattern and
// reads any accepted layout. A field `format` tag layout takes precedence both ways.
var DateTime = &json.Converter{
	Name:   "datetime",
	Match:  func(t reflect.Type) bool { return t == timeType },
	Encode: encodeDateTime,
	Decode: decodeDateTime,
}

func location(options *json.Options) *time.Location {
	if options == nil || options.Location == nil {
		return time.UTC
	}
	return options.Location
}

func datePattern(options *json.Options) (*ftime.Pattern, error) {
	format := json.DefaultDateTimeFormat
	if options != nil && options.DateTimeFormat != "" {
		format = options.DateTimeFormat
	}
	pattern, err := ftime.Compile(format)
	if err != nil {
		return nil, json.ConfigurationErrorf("invalid date time format %q: %v", format, err)
	}
	return pattern, nil
}

func encodeDateTime(enc *json.Encoder, value reflect.Value) error {
	ts := value.Interface().(time.Time).In(location(enc.Options()))
	if layout := enc.Layout(); layout != "" {
		enc.WriteString(ts.Format(layout))
		return nil
	}
	pattern, err := datePattern(enc.Options())
	if err != nil {
		return err
	}
	enc.WriteString(pattern.Format(ts))
	return nil
}

// decodeDateTime tries the field layout, the pattern's own layout, then the accepted layouts.
func decodeDateTime(dec *json.Decoder, target reflect.Type) (reflect.Value, error) {
	if dec.IsNull() {
		return reflect.Zero(target), nil
	}
	if dec.Kind() != json.StringToken {
		return reflect.Value{}, json.FormatErrorf("the JSON value %s could not be converted to %s", dec.Raw(), target)
	}
	text, err := dec.Text()
	if err != nil {
		return reflect.Value{}, err
	}
	options := dec.Options()
	var layouts []string
	if layout := dec.Layout(); layout != "" {
		layouts = append(layouts, layout)
	}
	if pattern, err := datePattern(options); err == nil {
		if layout, ok := pattern.Layout(); ok {
			layouts = append(layouts, layout)
		}
	}
	if options != nil && len(options.DateTimeLayouts) > 0 {
		layouts = append(layouts, options.DateTimeLayouts...)
	} else {
		layouts = append(layouts, ftime.DefaultLayouts...)
	}
	ts, err := ftime.ParseAny(text, location(options), layouts...)
	if err != nil {
		return reflect.Value{}, json.FormatErrorf("the JSON value %q could not be converted to %s", text, target)
	}
	return reflect.ValueOf(ts), nil
}
