package json

import (
	"reflect"
	"strconv"
	"time"
	"unsafe"

	"github.com/viant/xunsafe"
)

var timeType = reflect.TypeOf(time.Time{})

// appendFunc writes the field stored at ptr.
type appendFunc func(dst []byte, ptr unsafe.Pointer) ([]byte, error)

// scalarAppender returns a direct writer for string, bool and numeric field types.
// Types with their own marshalers are left to the reflective path.
func scalarAppender(rt reflect.Type) appendFunc {
	if implementsMarshaler(rt) || implementsMarshaler(reflect.PointerTo(rt)) {
		return nil
	}
	switch rt.Kind() {
	case reflect.String:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return appendQuotedString(dst, xunsafe.AsString(ptr)), nil
		}
	case reflect.Bool:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendBool(dst, xunsafe.AsBool(ptr)), nil
		}
	case reflect.Int:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendInt(dst, int64(xunsafe.AsInt(ptr)), 10), nil
		}
	case reflect.Int8:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendInt(dst, int64(xunsafe.AsInt8(ptr)), 10), nil
		}
	case reflect.Int16:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendInt(dst, int64(xunsafe.AsInt16(ptr)), 10), nil
		}
	case reflect.Int32:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendInt(dst, int64(xunsafe.AsInt32(ptr)), 10), nil
		}
	case reflect.Int64:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendInt(dst, xunsafe.AsInt64(ptr), 10), nil
		}
	case reflect.Uint:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendUint(dst, uint64(xunsafe.AsUint(ptr)), 10), nil
		}
	case reflect.Uint8:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendUint(dst, uint64(xunsafe.AsUint8(ptr)), 10), nil
		}
	case reflect.Uint16:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendUint(dst, uint64(xunsafe.AsUint16(ptr)), 10), nil
		}
	case reflect.Uint32:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendUint(dst, uint64(xunsafe.AsUint32(ptr)), 10), nil
		}
	case reflect.Uint64:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendUint(dst, xunsafe.AsUint64(ptr), 10), nil
		}
	case reflect.Uintptr:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return strconv.AppendUint(dst, uint64(xunsafe.AsUintptr(ptr)), 10), nil
		}
	case reflect.Float32:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return appendFloat(dst, float64(xunsafe.AsFloat32(ptr)), 32)
		}
	case reflect.Float64:
		return func(dst []byte, ptr unsafe.Pointer) ([]byte, error) {
			return appendFloat(dst, xunsafe.AsFloat64(ptr), 64)
		}
	}
	return nil
}

// addressOf returns the address of rv, or nil when rv is not addressable.
func addressOf(rv reflect.Value) unsafe.Pointer {
	if !rv.CanAddr() {
		return nil
	}
	return rv.Addr().UnsafePointer()
}

func setString(rv reflect.Value, s string) {
	if ptr := addressOf(rv); ptr != nil {
		*xunsafe.AsStringPtr(ptr) = s
		return
	}
	rv.SetString(s)
}

func setBool(rv reflect.Value, b bool) {
	if ptr := addressOf(rv); ptr != nil {
		*xunsafe.AsBoolPtr(ptr) = b
		return
	}
	rv.SetBool(b)
}

// setInt stores n, already range checked for the kind of rv.
func setInt(rv reflect.Value, n int64) {
	ptr := addressOf(rv)
	if ptr == nil {
		rv.SetInt(n)
		return
	}
	switch rv.Kind() {
	case reflect.Int:
		*xunsafe.AsIntPtr(ptr) = int(n)
	case reflect.Int8:
		*xunsafe.AsInt8Ptr(ptr) = int8(n)
	case reflect.Int16:
		*xunsafe.AsInt16Ptr(ptr) = int16(n)
	case reflect.Int32:
		*xunsafe.AsInt32Ptr(ptr) = int32(n)
	default:
		*xunsafe.AsInt64Ptr(ptr) = n
	}
}

// setUint stores n, already range checked for the kind of rv.
func setUint(rv reflect.Value, n uint64) {
	ptr := addressOf(rv)
	if ptr == nil {
		rv.SetUint(n)
		return
	}
	switch rv.Kind() {
	case reflect.Uint:
		*xunsafe.AsUintPtr(ptr) = uint(n)
	case reflect.Uint8:
		*xunsafe.AsUint8Ptr(ptr) = uint8(n)
	case reflect.Uint16:
		*xunsafe.AsUint16Ptr(ptr) = uint16(n)
	case reflect.Uint32:
		*xunsafe.AsUint32Ptr(ptr) = uint32(n)
	case reflect.Uintptr:
		*(*uintptr)(ptr) = uintptr(n)
	default:
		*xunsafe.AsUint64Ptr(ptr) = n
	}
}

func setFloat(rv reflect.Value, f float64) {
	ptr := addressOf(rv)
	if ptr == nil {
		rv.SetFloat(f)
		return
	}
	if rv.Kind() == reflect.Float32 {
		*xunsafe.AsFloat32Ptr(ptr) = float32(f)
		return
	}
	*xunsafe.AsFloat64Ptr(ptr) = f
}
