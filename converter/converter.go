// Package converter provides the built-in converters: errors, name/value
// multi-maps, enums, date times and IP addresses.
package converter

import "github.com/viant/serializer/encoding/json"

// Defaults returns the built-in converters in dispatch order. The enum set
// converter is included when enums is not nil.
func Defaults(enums *EnumSet) []*json.Converter {
	ret := []*json.Converter{Exception, NameValue}
	if enums != nil {
		ret = append(ret, enums.Converter())
	}
	return append(ret, DateTime, IPAddress)
}
