package json

import (
	"encoding"
	"encoding/base64"
	stdjson "encoding/json"
	"reflect"
	"strconv"
	"time"
	"unicode/utf16"
	"unicode/utf8"
	"unsafe"

	"github.com/viant/xunsafe"
)

var (
	jsonUnmarshalerType = reflect.TypeOf((*stdjson.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

type decodeState struct {
	data    []byte
	pos     int
	hooks   ScannerHooks
	options *Options
	depth   int
}

func newDecodeState(data []byte, options *Options) *decodeState {
	if options == nil {
		options = NewOptions()
	}
	hooks := options.scannerHooks
	if hooks == nil {
		hooks = scalarScannerHooks{}
	}
	return &decodeState{data: data, hooks: hooks, options: options}
}

func unmarshal(data []byte, dest interface{}, options *Options) error {
	rv := reflect.ValueOf(dest)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &Error{Op: "decode", Message: "destination must be a non-nil pointer", Err: ErrUnsupported}
	}
	d := newDecodeState(data, options)
	if err := d.decodeValue(rv.Elem(), ""); err != nil {
		return err
	}
	d.skipWS()
	if d.pos != len(d.data) {
		return newSyntaxError(d.pos, "unexpected trailing data")
	}
	return nil
}

func (d *decodeState) skipWS() { d.pos = d.hooks.SkipWhitespace(d.data, d.pos) }

func (d *decodeState) current() byte { return d.data[d.pos] }

func (d *decodeState) decodeValue(rv reflect.Value, layout string) error {
	d.skipWS()
	if d.pos >= len(d.data) {
		return newSyntaxError(d.pos, "unexpected end of input")
	}
	if c := d.options.Resolve(rv.Type()); c != nil {
		return d.convert(c, rv, layout)
	}
	if d.current() == 'n' {
		if !d.match("null") {
			return newSyntaxError(d.pos, "invalid token")
		}
		switch rv.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
			rv.Set(reflect.Zero(rv.Type()))
		}
		return nil
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decodeValue(rv.Elem(), layout)
	}
	if layout != "" && rv.Type() == timeType {
		if ptr := addressOf(rv); ptr != nil {
			return d.decodeTime(ptr, layout)
		}
	}
	if handled, err := d.tryUnmarshaler(rv); handled || err != nil {
		return err
	}
	switch rv.Kind() {
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return &Error{Op: "decode", Message: "cannot decode into interface " + rv.Type().String(), Err: ErrUnsupported}
		}
		value, err := d.parseAny()
		if err != nil {
			return err
		}
		if value == nil {
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
		rv.Set(reflect.ValueOf(value))
		return nil
	case reflect.Struct:
		return d.decodeStruct(rv)
	case reflect.Map:
		return d.decodeMap(rv)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 && d.current() == '"' {
			return d.decodeBytes(rv)
		}
		return d.decodeSlice(rv)
	case reflect.Array:
		return d.decodeArray(rv)
	case reflect.String:
		if d.current() != '"' {
			return d.typeError(rv.Type())
		}
		s, err := d.parseStringValue()
		if err != nil {
			return err
		}
		setString(rv, s)
		return nil
	case reflect.Bool:
		switch {
		case d.match("true"):
			setBool(rv, true)
		case d.match("false"):
			setBool(rv, false)
		default:
			return d.typeError(rv.Type())
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return d.decodeNumber(rv)
	}
	return &Error{Op: "decode", Message: "unsupported kind: " + rv.Kind().String(), Err: ErrUnsupported}
}

func (d *decodeState) convert(c *Converter, rv reflect.Value, layout string) error {
	if c.Decode == nil {
		return UnsupportedErrorf("converter %s cannot decode %s", c.Name, rv.Type())
	}
	start := d.pos
	if err := d.skipRawValue(); err != nil {
		return err
	}
	dec := &Decoder{raw: d.data[start:d.pos], options: d.options, layout: layout}
	value, err := c.Decode(dec, rv.Type())
	if err != nil {
		return withPath(err, "decode", "")
	}
	if !value.IsValid() {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	switch {
	case value.Type().AssignableTo(rv.Type()):
	case value.Type().ConvertibleTo(rv.Type()):
		value = value.Convert(rv.Type())
	default:
		return UnsupportedErrorf("converter %s returned %s for %s", c.Name, value.Type(), rv.Type())
	}
	rv.Set(value)
	return nil
}

func (d *decodeState) tryUnmarshaler(rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if pv.Type().Implements(jsonUnmarshalerType) {
		start := d.pos
		if err := d.skipRawValue(); err != nil {
			return true, err
		}
		raw := append([]byte(nil), d.data[start:d.pos]...)
		if err := pv.Interface().(stdjson.Unmarshaler).UnmarshalJSON(raw); err != nil {
			return true, &Error{Op: "decode", Message: err.Error(), Err: ErrFormat}
		}
		return true, nil
	}
	if pv.Type().Implements(textUnmarshalerType) && d.current() == '"' {
		s, err := d.parseStringValue()
		if err != nil {
			return true, err
		}
		if err = pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return true, &Error{Op: "decode", Message: err.Error(), Err: ErrFormat}
		}
		return true, nil
	}
	return false, nil
}

func (d *decodeState) decodeStruct(rv reflect.Value) error {
	if d.current() != '{' {
		return d.typeError(rv.Type())
	}
	plan := planFor(rv.Type(), d.options.CaseFormat)
	structPtr := rv.Addr().UnsafePointer()
	d.pos++
	return d.scanObject(func(key string) error {
		fp := plan.lookup(key)
		if fp == nil {
			if d.options.UnknownFieldPolicy == ErrorOnUnknown {
				return withPath(FormatErrorf("unknown field %q", key), "decode", key)
			}
			return d.skipRawValue()
		}
		ptr := fp.settablePointer(structPtr)
		if fp.isTime() && d.options.Resolve(fp.rType) == nil {
			return withPath(d.decodeTime(ptr, fp.timeLayout), "decode", fp.name)
		}
		fieldValue := reflect.NewAt(fp.rType, ptr).Elem()
		var err error
		if fp.quoted {
			err = d.decodeQuoted(fieldValue)
		} else {
			err = d.decodeValue(fieldValue, fp.timeLayout)
		}
		return withPath(err, "decode", fp.name)
	})
}

// decodeTime reads a time.Time field with its tag layout; null leaves the field unchanged.
func (d *decodeState) decodeTime(ptr unsafe.Pointer, layout string) error {
	d.skipWS()
	if d.pos >= len(d.data) {
		return newSyntaxError(d.pos, "unexpected end of input")
	}
	if d.current() == 'n' {
		if !d.match("null") {
			return newSyntaxError(d.pos, "invalid token")
		}
		return nil
	}
	if d.current() != '"' {
		return d.typeError(timeType)
	}
	text, err := d.parseStringValue()
	if err != nil {
		return err
	}
	loc := d.options.Location
	if loc == nil {
		loc = time.UTC
	}
	ts, err := time.ParseInLocation(layout, text, loc)
	if err != nil {
		return FormatErrorf("the JSON value %q could not be converted to %s", text, timeType)
	}
	*xunsafe.AsTimePtr(ptr) = ts
	return nil
}

// decodeQuoted handles `json:",string"` fields: the value is a JSON literal inside a string.
func (d *decodeState) decodeQuoted(rv reflect.Value) error {
	d.skipWS()
	if d.pos < len(d.data) && d.current() == 'n' {
		return d.decodeValue(rv, "")
	}
	if d.pos >= len(d.data) || d.current() != '"' {
		return d.typeError(rv.Type())
	}
	literal, err := d.parseStringValue()
	if err != nil {
		return err
	}
	inner := newDecodeState([]byte(literal), d.options)
	if err = inner.decodeValue(rv, ""); err != nil {
		return err
	}
	inner.skipWS()
	if inner.pos != len(inner.data) {
		return FormatErrorf("invalid use of ,string struct tag with %q", literal)
	}
	return nil
}

func (d *decodeState) decodeMap(rv reflect.Value) error {
	if d.current() != '{' {
		return d.typeError(rv.Type())
	}
	rt := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(rt))
	}
	d.pos++
	return d.scanObject(func(key string) error {
		elem := reflect.New(rt.Elem()).Elem()
		if err := d.decodeValue(elem, ""); err != nil {
			return withPath(err, "decode", key)
		}
		mapKey, err := mapKeyValue(key, rt.Key())
		if err != nil {
			return withPath(err, "decode", key)
		}
		rv.SetMapIndex(mapKey, elem)
		return nil
	})
}

func mapKeyValue(key string, keyType reflect.Type) (reflect.Value, error) {
	if keyType.Kind() == reflect.String {
		return reflect.ValueOf(key).Convert(keyType), nil
	}
	if reflect.PointerTo(keyType).Implements(textUnmarshalerType) {
		ptr := reflect.New(keyType)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(key)); err != nil {
			return reflect.Value{}, FormatErrorf("invalid map key %q: %v", key, err)
		}
		return ptr.Elem(), nil
	}
	ret := reflect.New(keyType).Elem()
	switch keyType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(key, 10, keyType.Bits())
		if err != nil {
			return reflect.Value{}, FormatErrorf("invalid map key %q for %s", key, keyType)
		}
		ret.SetInt(n)
		return ret, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(key, 10, keyType.Bits())
		if err != nil {
			return reflect.Value{}, FormatErrorf("invalid map key %q for %s", key, keyType)
		}
		ret.SetUint(n)
		return ret, nil
	}
	return reflect.Value{}, UnsupportedErrorf("unsupported map key type: %s", keyType)
}

func (d *decodeState) decodeBytes(rv reflect.Value) error {
	s, err := d.parseStringValue()
	if err != nil {
		return err
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return FormatErrorf("invalid base64 value for %s", rv.Type())
	}
	rv.SetBytes(data)
	return nil
}

func (d *decodeState) decodeSlice(rv reflect.Value) error {
	if d.current() != '[' {
		return d.typeError(rv.Type())
	}
	rt := rv.Type()
	result := reflect.MakeSlice(rt, 0, 4)
	d.pos++
	err := d.scanArray(func(index int) error {
		result = reflect.Append(result, reflect.Zero(rt.Elem()))
		return withPath(d.decodeValue(result.Index(index), ""), "decode", "["+strconv.Itoa(index)+"]")
	})
	if err != nil {
		return err
	}
	rv.Set(result)
	return nil
}

func (d *decodeState) decodeArray(rv reflect.Value) error {
	if d.current() != '[' {
		return d.typeError(rv.Type())
	}
	d.pos++
	count := 0
	err := d.scanArray(func(index int) error {
		count++
		if index >= rv.Len() {
			return d.skipRawValue()
		}
		return withPath(d.decodeValue(rv.Index(index), ""), "decode", "["+strconv.Itoa(index)+"]")
	})
	if err != nil {
		return err
	}
	for i := count; i < rv.Len(); i++ {
		rv.Index(i).Set(reflect.Zero(rv.Type().Elem()))
	}
	return nil
}

func (d *decodeState) decodeNumber(rv reflect.Value) error {
	var literal string
	switch c := d.current(); {
	case c == '"':
		if !d.options.NumberFromString {
			return d.typeError(rv.Type())
		}
		s, err := d.parseStringValue()
		if err != nil {
			return err
		}
		if !isValidNumber(s) {
			return FormatErrorf("the JSON value %q could not be converted to %s", s, rv.Type())
		}
		literal = s
	case tokenKindOf(c) == NumberToken:
		start := d.pos
		if err := d.skipRawNumber(); err != nil {
			return err
		}
		literal = string(d.data[start:d.pos])
	default:
		return d.typeError(rv.Type())
	}
	rt := rv.Type()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(literal, 10, rt.Bits())
		if err != nil {
			return FormatErrorf("the JSON value %s could not be converted to %s", literal, rt)
		}
		setInt(rv, n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(literal, 10, rt.Bits())
		if err != nil {
			return FormatErrorf("the JSON value %s could not be converted to %s", literal, rt)
		}
		setUint(rv, n)
	default:
		f, err := strconv.ParseFloat(literal, rt.Bits())
		if err != nil {
			return FormatErrorf("the JSON value %s could not be converted to %s", literal, rt)
		}
		setFloat(rv, f)
	}
	return nil
}

func (d *decodeState) typeError(rt reflect.Type) error {
	kind := InvalidToken
	if d.pos < len(d.data) {
		kind = tokenKindOf(d.current())
	}
	if kind == InvalidToken {
		return newSyntaxError(d.pos, "invalid character")
	}
	return FormatErrorf("cannot decode JSON %s into %s", kind, rt)
}

// enter opens a nesting level; callers invoke it right after consuming '{' or '['.
func (d *decodeState) enter() error {
	d.depth++
	if limit := d.options.MaxDepth; limit > 0 && d.depth > limit {
		return newSyntaxError(d.pos, "exceeded max depth of %d", limit)
	}
	return nil
}

func (d *decodeState) leave() { d.depth-- }

// scanObject walks object members after the opening brace, calling fn with the
// scanner positioned on each member value; fn must consume that value.
func (d *decodeState) scanObject(fn func(key string) error) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()
	d.skipWS()
	if d.pos < len(d.data) && d.current() == '}' {
		d.pos++
		return nil
	}
	for {
		d.skipWS()
		key, err := d.parseStringValue()
		if err != nil {
			return err
		}
		d.skipWS()
		if d.pos >= len(d.data) || d.current() != ':' {
			return newSyntaxError(d.pos, "expected ':'")
		}
		d.pos++
		if err = fn(key); err != nil {
			return err
		}
		d.skipWS()
		if d.pos >= len(d.data) {
			return newSyntaxError(d.pos, "unexpected end of object")
		}
		switch d.current() {
		case '}':
			d.pos++
			return nil
		case ',':
			d.pos++
		default:
			return newSyntaxError(d.pos, "expected ',' or '}'")
		}
		d.skipWS()
		if d.pos < len(d.data) && d.current() == '}' {
			if !d.options.AllowTrailingCommas {
				return newSyntaxError(d.pos, "trailing comma")
			}
			d.pos++
			return nil
		}
	}
}

// scanArray walks array elements after the opening bracket.
func (d *decodeState) scanArray(fn func(index int) error) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()
	d.skipWS()
	if d.pos < len(d.data) && d.current() == ']' {
		d.pos++
		return nil
	}
	for index := 0; ; index++ {
		if err := fn(index); err != nil {
			return err
		}
		d.skipWS()
		if d.pos >= len(d.data) {
			return newSyntaxError(d.pos, "unexpected end of array")
		}
		switch d.current() {
		case ']':
			d.pos++
			return nil
		case ',':
			d.pos++
		default:
			return newSyntaxError(d.pos, "expected ',' or ']'")
		}
		d.skipWS()
		if d.pos < len(d.data) && d.current() == ']' {
			if !d.options.AllowTrailingCommas {
				return newSyntaxError(d.pos, "trailing comma")
			}
			d.pos++
			return nil
		}
	}
}

// parseAny decodes into the generic representation: map[string]interface{},
// []interface{}, string, float64, bool or nil.
func (d *decodeState) parseAny() (interface{}, error) {
	d.skipWS()
	if d.pos >= len(d.data) {
		return nil, newSyntaxError(d.pos, "unexpected end of input")
	}
	switch d.current() {
	case '{':
		d.pos++
		obj := map[string]interface{}{}
		err := d.scanObject(func(key string) error {
			value, err := d.parseAny()
			if err != nil {
				return withPath(err, "decode", key)
			}
			obj[key] = value
			return nil
		})
		return obj, err
	case '[':
		d.pos++
		arr := make([]interface{}, 0)
		err := d.scanArray(func(index int) error {
			value, err := d.parseAny()
			if err != nil {
				return withPath(err, "decode", "["+strconv.Itoa(index)+"]")
			}
			arr = append(arr, value)
			return nil
		})
		return arr, err
	case '"':
		return d.parseStringValue()
	case 't':
		if d.match("true") {
			return true, nil
		}
	case 'f':
		if d.match("false") {
			return false, nil
		}
	case 'n':
		if d.match("null") {
			return nil, nil
		}
	default:
		start := d.pos
		if err := d.skipRawNumber(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(string(d.data[start:d.pos]), 64)
		if err != nil {
			return nil, newSyntaxError(start, "invalid number")
		}
		return f, nil
	}
	return nil, newSyntaxError(d.pos, "invalid token")
}

func (d *decodeState) skipRawValue() error {
	d.skipWS()
	if d.pos >= len(d.data) {
		return newSyntaxError(d.pos, "unexpected end of input")
	}
	switch d.current() {
	case '{':
		d.pos++
		return d.scanObject(func(string) error { return d.skipRawValue() })
	case '[':
		d.pos++
		return d.scanArray(func(int) error { return d.skipRawValue() })
	case '"':
		return d.skipRawString()
	case 't':
		if d.match("true") {
			return nil
		}
	case 'f':
		if d.match("false") {
			return nil
		}
	case 'n':
		if d.match("null") {
			return nil
		}
	default:
		return d.skipRawNumber()
	}
	return newSyntaxError(d.pos, "invalid token")
}

func (d *decodeState) skipRawString() error {
	if d.pos >= len(d.data) || d.current() != '"' {
		return newSyntaxError(d.pos, "expected string")
	}
	d.pos++
	escaped := false
	for d.pos < len(d.data) {
		c := d.current()
		if c == '"' && !escaped {
			d.pos++
			return nil
		}
		if c == '\\' {
			escaped = !escaped
		} else {
			if c < 0x20 {
				return newSyntaxError(d.pos, "invalid control character in string")
			}
			escaped = false
		}
		d.pos++
	}
	return newSyntaxError(d.pos, "unterminated string")
}

func (d *decodeState) skipRawNumber() error {
	start := d.pos
	for d.pos < len(d.data) {
		c := d.current()
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			d.pos++
			continue
		}
		break
	}
	if d.pos == start || !isValidNumber(string(d.data[start:d.pos])) {
		return newSyntaxError(start, "invalid number")
	}
	return nil
}

func (d *decodeState) match(token string) bool {
	end := d.pos + len(token)
	if end > len(d.data) || string(d.data[d.pos:end]) != token {
		return false
	}
	d.pos = end
	return true
}

func (d *decodeState) parseStringValue() (string, error) {
	if d.pos >= len(d.data) || d.current() != '"' {
		return "", newSyntaxError(d.pos, "expected string")
	}
	d.pos++
	start := d.pos
	quote, escape := d.hooks.FindQuoteOrEscape(d.data, start)
	if quote >= 0 && escape < 0 && !hasControl(d.data[start:quote]) {
		d.pos = quote + 1
		return string(d.data[start:quote]), nil
	}
	escaped := false
	for i := start; i < len(d.data); i++ {
		c := d.data[i]
		if c == '"' && !escaped {
			s, err := unescapeString(d.data[start:i])
			if err != nil {
				return "", newSyntaxError(start, "%v", err)
			}
			d.pos = i + 1
			return s, nil
		}
		if c == '\\' {
			escaped = !escaped
			continue
		}
		if c < 0x20 {
			return "", newSyntaxError(i, "invalid control character in string")
		}
		escaped = false
	}
	return "", newSyntaxError(d.pos, "unterminated string")
}

func hasControl(data []byte) bool {
	for _, c := range data {
		if c < 0x20 {
			return true
		}
	}
	return false
}

func unescapeString(raw []byte) (string, error) {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", errInvalidEscape
		}
		switch raw[i] {
		case '"', '\\', '/':
			out = append(out, raw[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			if i+4 >= len(raw) {
				return "", errInvalidEscape
			}
			r, ok := parseHex4(raw[i+1 : i+5])
			if !ok {
				return "", errInvalidEscape
			}
			i += 4
			if utf16.IsSurrogate(r) {
				if i+6 < len(raw) && raw[i+1] == '\\' && raw[i+2] == 'u' {
					if r2, ok := parseHex4(raw[i+3 : i+7]); ok {
						if decoded := utf16.DecodeRune(r, r2); decoded != utf8.RuneError {
							out = utf8.AppendRune(out, decoded)
							i += 6
							continue
						}
					}
				}
				r = utf8.RuneError
			}
			out = utf8.AppendRune(out, r)
		default:
			return "", errInvalidEscape
		}
	}
	return string(out), nil
}

var errInvalidEscape = &Error{Op: "decode", Message: "invalid escape sequence", Err: ErrFormat}

func parseHex4(b []byte) (rune, bool) {
	var v rune
	for _, c := range b {
		var digit rune
		switch {
		case c >= '0' && c <= '9':
			digit = rune(c - '0')
		case c >= 'a' && c <= 'f':
			digit = rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = rune(c-'A') + 10
		default:
			return 0, false
		}
		v = v<<4 | digit
	}
	return v, true
}

// isValidNumber reports whether s follows the JSON number grammar.
func isValidNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if i >= len(s) || s[i] < '0' || s[i] > '9' {
			return false
		}
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if i >= len(s) || s[i] < '0' || s[i] > '9' {
			return false
		}
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	return i == len(s)
}
