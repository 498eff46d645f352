package json

import (
	"math"
	"reflect"
	"strconv"
	"sync"
	"unicode/utf8"
	"unsafe"
)

// Encoder accumulates JSON output. The engine hands it to converters, which
// write exactly one value or nothing at all.
type Encoder struct {
	buf     []byte
	options *Options
	frames  []frame
	layout  string

	refLevel int
	refSeen  map[reference]struct{}
}

// reference identifies a pointer, map or slice on the current encode path.
type reference struct {
	ptr unsafe.Pointer
	len int
}

// startDetectingCyclesAfter is the reference nesting level past which visited references are tracked.
const startDetectingCyclesAfter = 1000

type frame struct {
	object   bool
	count    int
	afterKey bool
}

var encoderPool = sync.Pool{New: func() interface{} { return &Encoder{buf: make([]byte, 0, 256)} }}

func acquireEncoder(options *Options) *Encoder {
	enc := encoderPool.Get().(*Encoder)
	enc.buf = enc.buf[:0]
	enc.frames = enc.frames[:0]
	enc.options = options
	enc.layout = ""
	enc.refLevel = 0
	return enc
}

func releaseEncoder(enc *Encoder) {
	if enc == nil || cap(enc.buf) > 64*1024 {
		return
	}
	enc.options = nil
	clear(enc.refSeen)
	encoderPool.Put(enc)
}

// enter records rv, a non-nil pointer, map or slice, on the encode path.
// A successful enter must be paired with leave.
func (e *Encoder) enter(rv reflect.Value) error {
	e.refLevel++
	if e.refLevel <= startDetectingCyclesAfter {
		return nil
	}
	ref := referenceOf(rv)
	if e.refSeen == nil {
		e.refSeen = map[reference]struct{}{}
	}
	if _, ok := e.refSeen[ref]; ok {
		e.refLevel--
		return &Error{Op: "encode", Message: "cycle detected for " + rv.Type().String(), Err: ErrUnsupported}
	}
	e.refSeen[ref] = struct{}{}
	return nil
}

func (e *Encoder) leave(rv reflect.Value) {
	if e.refLevel > startDetectingCyclesAfter {
		delete(e.refSeen, referenceOf(rv))
	}
	e.refLevel--
}

func referenceOf(rv reflect.Value) reference {
	ref := reference{ptr: rv.UnsafePointer()}
	if rv.Kind() == reflect.Slice {
		ref.len = rv.Len()
	}
	return ref
}

// Options returns the snapshot the value is encoded with.
func (e *Encoder) Options() *Options { return e.options }

// Layout returns the Go time layout requested by the enclosing struct field tag, if any.
func (e *Encoder) Layout() string { return e.layout }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) beforeValue() {
	if len(e.frames) == 0 {
		return
	}
	top := &e.frames[len(e.frames)-1]
	if top.object {
		top.afterKey = false
		return
	}
	if top.count > 0 {
		e.buf = append(e.buf, ',')
	}
	top.count++
}

// BeginObject opens an object value.
func (e *Encoder) BeginObject() {
	e.beforeValue()
	e.buf = append(e.buf, '{')
	e.frames = append(e.frames, frame{object: true})
}

// EndObject closes the innermost object.
func (e *Encoder) EndObject() {
	e.buf = append(e.buf, '}')
	e.pop()
}

// BeginArray opens an array value.
func (e *Encoder) BeginArray() {
	e.beforeValue()
	e.buf = append(e.buf, '[')
	e.frames = append(e.frames, frame{})
}

// EndArray closes the innermost array.
func (e *Encoder) EndArray() {
	e.buf = append(e.buf, ']')
	e.pop()
}

func (e *Encoder) pop() {
	if len(e.frames) > 0 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Key writes an object member name; the next written value belongs to it.
func (e *Encoder) Key(name string) {
	if len(e.frames) > 0 {
		top := &e.frames[len(e.frames)-1]
		if top.count > 0 {
			e.buf = append(e.buf, ',')
		}
		top.count++
		top.afterKey = true
	}
	e.buf = appendQuotedString(e.buf, name)
	e.buf = append(e.buf, ':')
}

// Field writes name and value; when value encodes to nothing the member is dropped.
func (e *Encoder) Field(name string, value interface{}) error {
	mark := len(e.buf)
	var saved frame
	if len(e.frames) > 0 {
		saved = e.frames[len(e.frames)-1]
	}
	e.Key(name)
	valueMark := len(e.buf)
	if err := e.Encode(value); err != nil {
		return err
	}
	if len(e.buf) == valueMark {
		e.buf = e.buf[:mark]
		if len(e.frames) > 0 {
			e.frames[len(e.frames)-1] = saved
		}
	}
	return nil
}

func (e *Encoder) WriteNull() {
	e.beforeValue()
	e.buf = append(e.buf, "null"...)
}

func (e *Encoder) WriteString(s string) {
	e.beforeValue()
	e.buf = appendQuotedString(e.buf, s)
}

func (e *Encoder) WriteBool(b bool) {
	e.beforeValue()
	e.buf = strconv.AppendBool(e.buf, b)
}

func (e *Encoder) WriteInt(i int64) {
	e.beforeValue()
	e.buf = strconv.AppendInt(e.buf, i, 10)
}

func (e *Encoder) WriteUint(u uint64) {
	e.beforeValue()
	e.buf = strconv.AppendUint(e.buf, u, 10)
}

func (e *Encoder) WriteFloat(f float64) error {
	e.beforeValue()
	var err error
	e.buf, err = appendFloat(e.buf, f, 64)
	return err
}

// WriteRaw writes a pre-encoded JSON value verbatim.
func (e *Encoder) WriteRaw(data []byte) {
	e.beforeValue()
	e.buf = append(e.buf, data...)
}

// Encode writes value through the engine, dispatching nested converters.
func (e *Encoder) Encode(value interface{}) error {
	e.beforeValue()
	if value == nil {
		e.buf = append(e.buf, "null"...)
		return nil
	}
	rv, ok := value.(reflect.Value)
	if !ok {
		rv = reflect.ValueOf(value)
	}
	return e.appendValue(rv, "")
}

func appendFloat(dst []byte, f float64, bits int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, &Error{Op: "encode", Message: "unsupported value: " + strconv.FormatFloat(f, 'g', -1, bits), Err: ErrFormat}
	}
	abs := math.Abs(f)
	fmtByte := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			fmtByte = 'e'
		}
	}
	dst = strconv.AppendFloat(dst, f, fmtByte, -1, bits)
	if fmtByte == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst, nil
}

const hex = "0123456789abcdef"

func appendQuotedString(dst []byte, s string) []byte {
	start := len(dst)
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == '"' || c == '\\' || c >= utf8.RuneSelf {
			dst = dst[:start]
			return appendQuotedStringSlow(dst, s)
		}
	}
	dst = append(dst, s...)
	dst = append(dst, '"')
	return dst
}

func appendQuotedStringSlow(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		if b := s[i]; b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch b {
			case '\\', '"':
				dst = append(dst, '\\', b)
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			default:
				dst = append(dst, '\\', 'u', '0', '0', hex[b>>4], hex[b&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, s[start:i]...)
			dst = append(dst, `\ufffd`...)
			i += size
			start = i
			continue
		}
		if r == '\u2028' || r == '\u2029' {
			dst = append(dst, s[start:i]...)
			dst = append(dst, '\\', 'u', '2', '0', '2', hex[r&0xF])
			i += size
			start = i
			continue
		}
		i += size
	}
	dst = append(dst, s[start:]...)
	dst = append(dst, '"')
	return dst
}
