package converter

import (
	"net"
	"net/netip"
	"reflect"

	"github.com/viant/serializer/encoding/json"
)

var (
	ipType   = reflect.TypeOf(net.IP{})
	addrType = reflect.TypeOf(netip.Addr{})
)

// IPAddress writes net.IP and netip.Addr values as their canonical text and
// reads literal addresses only; host names are never resolved. Empty addresses
// are written as "" and read back as the zero value.
var IPAddress = &json.Converter{
	Name:   "ipaddress",
	Match:  func(t reflect.Type) bool { return t == ipType || t == addrType },
	Encode: encodeIPAddress,
	Decode: decodeIPAddress,
}

func encodeIPAddress(enc *json.Encoder, value reflect.Value) error {
	switch actual := value.Interface().(type) {
	case net.IP:
		if len(actual) == 0 {
			enc.WriteString("")
			return nil
		}
		if len(actual) != net.IPv4len && len(actual) != net.IPv6len {
			return &json.Error{Op: "encode", Message: "invalid IP address length", Err: json.ErrFormat}
		}
		enc.WriteString(actual.String())
	case netip.Addr:
		if !actual.IsValid() {
			enc.WriteString("")
			return nil
		}
		enc.WriteString(actual.String())
	}
	return nil
}

func decodeIPAddress(dec *json.Decoder, target reflect.Type) (reflect.Value, error) {
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
	if target == addrType {
		if text == "" {
			return reflect.Zero(target), nil
		}
		addr, err := netip.ParseAddr(text)
		if err != nil {
			return reflect.Value{}, json.FormatErrorf("the JSON value %q is not a valid IP address", text)
		}
		return reflect.ValueOf(addr), nil
	}
	if text == "" {
		return reflect.Zero(target), nil
	}
	ip := net.ParseIP(text)
	if ip == nil {
		return reflect.Value{}, json.FormatErrorf("the JSON value %q is not a valid IP address", text)
	}
	return reflect.ValueOf(ip), nil
}
