package json

import (
	"encoding"
	"encoding/base64"
	stdjson "encoding/json"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/viant/xunsafe"
)

var (
	jsonMarshalerType = reflect.TypeOf((*stdjson.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

func (e *Encoder) appendValue(rv reflect.Value, layout string) error {
	for {
		if !rv.IsValid() {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		if isNil(rv) {
			e.buf = append(e.buf, "null"...)
			return nil
		}
		if c := e.options.Resolve(rv.Type()); c != nil {
			return e.convert(c, rv, layout)
		}
		if rv.Kind() != reflect.Ptr && rv.Kind() != reflect.Interface {
			break
		}
		if rv.Kind() == reflect.Ptr {
			if err := e.enter(rv); err != nil {
				return err
			}
			defer e.leave(rv)
		}
		rv = rv.Elem()
	}
	if layout != "" && rv.Type() == timeType && rv.CanInterface() {
		e.buf = appendQuotedString(e.buf, e.localTime(rv.Interface().(time.Time)).Format(layout))
		return nil
	}
	if handled, err := e.tryAppendCustomMarshaler(rv); handled || err != nil {
		return err
	}
	switch rv.Kind() {
	case reflect.Struct:
		return e.appendStruct(rv)
	case reflect.Map:
		if err := e.enter(rv); err != nil {
			return err
		}
		defer e.leave(rv)
		return e.appendMap(rv)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.buf = append(e.buf, '"')
			src := rv.Bytes()
			n := len(e.buf)
			e.buf = append(e.buf, make([]byte, base64.StdEncoding.EncodedLen(len(src)))...)
			base64.StdEncoding.Encode(e.buf[n:], src)
			e.buf = append(e.buf, '"')
			return nil
		}
		if err := e.enter(rv); err != nil {
			return err
		}
		defer e.leave(rv)
		return e.appendSequence(rv)
	case reflect.Array:
		return e.appendSequence(rv)
	case reflect.String:
		e.buf = appendQuotedString(e.buf, rv.String())
		return nil
	case reflect.Bool:
		e.buf = strconv.AppendBool(e.buf, rv.Bool())
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf = strconv.AppendInt(e.buf, rv.Int(), 10)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf = strconv.AppendUint(e.buf, rv.Uint(), 10)
		return nil
	case reflect.Float32:
		var err error
		e.buf, err = appendFloat(e.buf, rv.Float(), 32)
		return err
	case reflect.Float64:
		var err error
		e.buf, err = appendFloat(e.buf, rv.Float(), 64)
		return err
	default:
		return &Error{Op: "encode", Message: "unsupported kind: " + rv.Kind().String(), Err: ErrUnsupported}
	}
}

// convert runs c with a fresh container stack so that the converter's
// own objects and arrays never interleave with the caller's.
func (e *Encoder) convert(c *Converter, rv reflect.Value, layout string) error {
	if c.Encode == nil {
		return &Error{Op: "encode", Message: "converter " + c.Name + " cannot encode " + rv.Type().String(), Err: ErrUnsupported}
	}
	savedFrames, savedLayout := e.frames, e.layout
	e.frames, e.layout = nil, layout
	err := c.Encode(e, rv)
	e.frames, e.layout = savedFrames, savedLayout
	if err != nil {
		return withPath(err, "encode", "")
	}
	return nil
}

func (e *Encoder) tryAppendCustomMarshaler(rv reflect.Value) (bool, error) {
	if rv.Kind() != reflect.Ptr && rv.CanAddr() {
		if pv := rv.Addr(); implementsMarshaler(pv.Type()) {
			rv = pv
		}
	}
	if !implementsMarshaler(rv.Type()) || !rv.CanInterface() {
		return false, nil
	}
	if m, ok := rv.Interface().(stdjson.Marshaler); ok {
		data, err := m.MarshalJSON()
		if err != nil {
			return true, err
		}
		var compact []byte
		if compact, err = compactJSON(data); err != nil {
			return true, err
		}
		e.buf = append(e.buf, compact...)
		return true, nil
	}
	if tm, ok := rv.Interface().(encoding.TextMarshaler); ok {
		data, err := tm.MarshalText()
		if err != nil {
			return true, err
		}
		e.buf = appendQuotedString(e.buf, string(data))
		return true, nil
	}
	return false, nil
}

func implementsMarshaler(rt reflect.Type) bool {
	return rt.Implements(jsonMarshalerType) || rt.Implements(textMarshalerType)
}

func (e *Encoder) appendStruct(rv reflect.Value) error {
	plan := planFor(rv.Type(), e.options.CaseFormat)
	structPtr := structPointer(rv)
	e.buf = append(e.buf, '{')
	counter := 0
	for _, fp := range plan.fields {
		ptr := fp.pointer(structPtr)
		if ptr == nil {
			continue
		}
		converted := e.options.Resolve(fp.rType) != nil
		direct := !converted && !fp.quoted && (fp.appendFn != nil || fp.isTime())
		var fieldValue reflect.Value
		if !direct || fp.omitempty {
			fieldValue = reflect.NewAt(fp.rType, ptr).Elem()
			if fp.omitempty && isEmptyValue(fieldValue) {
				continue
			}
			if !e.options.IncludeNulls && isNil(fieldValue) {
				continue
			}
		}
		mark := len(e.buf)
		if counter > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = append(e.buf, fp.keyLit...)
		valueMark := len(e.buf)
		var err error
		switch {
		case direct && fp.isTime():
			e.buf = appendQuotedString(e.buf, e.localTime(xunsafe.AsTime(ptr)).Format(fp.timeLayout))
		case direct:
			e.buf, err = fp.appendFn(e.buf, ptr)
		case fp.quoted:
			err = e.appendQuotedScalar(fieldValue)
		default:
			err = e.appendValue(fieldValue, fp.timeLayout)
		}
		if err != nil {
			return withPath(err, "encode", fp.name)
		}
		if len(e.buf) == valueMark {
			e.buf = e.buf[:mark]
			continue
		}
		counter++
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *Encoder) localTime(ts time.Time) time.Time {
	if loc := e.options.Location; loc != nil {
		return ts.In(loc)
	}
	return ts
}

// appendQuotedScalar honors the `json:",string"` option.
func (e *Encoder) appendQuotedScalar(rv reflect.Value) error {
	if rv.Kind() == reflect.String {
		e.buf = appendQuotedString(e.buf, string(appendQuotedString(nil, rv.String())))
		return nil
	}
	start := len(e.buf)
	if err := e.appendValue(rv, ""); err != nil {
		return err
	}
	literal := string(e.buf[start:])
	e.buf = appendQuotedString(e.buf[:start], literal)
	return nil
}

type mapEntry struct {
	key   string
	value reflect.Value
}

func (e *Encoder) appendMap(rv reflect.Value) error {
	entries := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := mapKeyString(iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, mapEntry{key: key, value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	e.buf = append(e.buf, '{')
	counter := 0
	for _, entry := range entries {
		mark := len(e.buf)
		if counter > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = appendQuotedString(e.buf, entry.key)
		e.buf = append(e.buf, ':')
		valueMark := len(e.buf)
		if err := e.appendValue(entry.value, ""); err != nil {
			return withPath(err, "encode", entry.key)
		}
		if len(e.buf) == valueMark {
			e.buf = e.buf[:mark]
			continue
		}
		counter++
	}
	e.buf = append(e.buf, '}')
	return nil
}

func mapKeyString(key reflect.Value) (string, error) {
	if key.Kind() == reflect.String {
		return key.String(), nil
	}
	if key.CanInterface() {
		if tm, ok := key.Interface().(encoding.TextMarshaler); ok {
			if key.Kind() == reflect.Ptr && key.IsNil() {
				return "", nil
			}
			data, err := tm.MarshalText()
			return string(data), err
		}
	}
	switch key.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(key.Uint(), 10), nil
	}
	return "", &Error{Op: "encode", Message: "unsupported map key type: " + key.Type().String(), Err: ErrUnsupported}
}

func (e *Encoder) appendSequence(rv reflect.Value) error {
	e.buf = append(e.buf, '[')
	counter := 0
	for i := 0; i < rv.Len(); i++ {
		mark := len(e.buf)
		if counter > 0 {
			e.buf = append(e.buf, ',')
		}
		valueMark := len(e.buf)
		if err := e.appendValue(rv.Index(i), ""); err != nil {
			return withPath(err, "encode", "["+strconv.Itoa(i)+"]")
		}
		if len(e.buf) == valueMark {
			e.buf = e.buf[:mark]
			continue
		}
		counter++
	}
	e.buf = append(e.buf, ']')
	return nil
}

func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}
