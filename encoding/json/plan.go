package json

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/viant/serializer/encoding/json/internal/tagutil"
	"github.com/viant/tagly/format/text"
	"github.com/viant/xunsafe"
)

type structPlan struct {
	fields []*fieldPlan
	byName map[string]*fieldPlan
	byFold map[string]*fieldPlan
}

type fieldPlan struct {
	fieldName  string
	name       string
	keyLit     []byte
	omitempty  bool
	quoted     bool
	rType      reflect.Type
	chain      []*xunsafe.Field
	embedPtr   []reflect.Type
	timeLayout string
	appendFn   appendFunc
}

type planKey struct {
	rType      reflect.Type
	caseFormat text.CaseFormat
}

var plans sync.Map // map[planKey]*structPlan

func planFor(rt reflect.Type, caseFormat text.CaseFormat) *structPlan {
	key := planKey{rType: rt, caseFormat: caseFormat}
	if p, ok := plans.Load(key); ok {
		return p.(*structPlan)
	}
	plan := buildStructPlan(rt, caseFormat)
	actual, _ := plans.LoadOrStore(key, plan)
	return actual.(*structPlan)
}

func buildStructPlan(rt reflect.Type, caseFormat text.CaseFormat) *structPlan {
	result := &structPlan{
		byName: map[string]*fieldPlan{},
		byFold: map[string]*fieldPlan{},
	}
	collectFields(result, rt, nil, nil, caseFormat, map[reflect.Type]bool{rt: true})
	for _, fp := range result.fields {
		result.byName[fp.name] = fp
		folded := strings.ToLower(fp.name)
		if _, ok := result.byFold[folded]; !ok {
			result.byFold[folded] = fp
		}
	}
	return result
}

func collectFields(result *structPlan, rt reflect.Type, chain []*xunsafe.Field, embedPtr []reflect.Type, caseFormat text.CaseFormat, visiting map[reflect.Type]bool) {
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		resolved := tagutil.ResolveFieldTag(field)
		if resolved.Ignore {
			continue
		}
		if field.Anonymous && !resolved.Explicit {
			embedded := field.Type
			isPtr := embedded.Kind() == reflect.Ptr
			if isPtr {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				if (isPtr && field.PkgPath != "") || visiting[embedded] {
					continue
				}
				visiting[embedded] = true
				nextPtr := append(append([]reflect.Type(nil), embedPtr...), nil)
				if isPtr {
					nextPtr[len(nextPtr)-1] = embedded
				}
				collectFields(result, embedded, appendChain(chain, xunsafe.NewField(field)), nextPtr, caseFormat, visiting)
				delete(visiting, embedded)
				continue
			}
		}
		if field.PkgPath != "" {
			continue
		}
		name := resolved.Name
		if !resolved.Explicit && caseFormat.IsDefined() {
			name = formatName(name, caseFormat)
		}
		if result.has(name) {
			continue
		}
		jTag := tagutil.ParseJSONTag(field.Name, field.Tag.Get("json"))
		fp := &fieldPlan{
			fieldName:  field.Name,
			name:       name,
			keyLit:     appendQuotedString(nil, name),
			omitempty:  resolved.OmitEmpty,
			quoted:     jTag.String && isQuotableKind(field.Type.Kind()),
			rType:      field.Type,
			chain:      appendChain(chain, xunsafe.NewField(field)),
			embedPtr:   append(append([]reflect.Type(nil), embedPtr...), nil),
			timeLayout: resolved.Format.TimeLayout,
			appendFn:   scalarAppender(field.Type),
		}
		fp.keyLit = append(fp.keyLit, ':')
		result.fields = append(result.fields, fp)
	}
}

func (p *structPlan) has(name string) bool {
	for _, fp := range p.fields {
		if fp.name == name {
			return true
		}
	}
	return false
}

func (p *structPlan) lookup(name string) *fieldPlan {
	if fp, ok := p.byName[name]; ok {
		return fp
	}
	return p.byFold[strings.ToLower(name)]
}

func appendChain(chain []*xunsafe.Field, field *xunsafe.Field) []*xunsafe.Field {
	ret := make([]*xunsafe.Field, len(chain), len(chain)+1)
	copy(ret, chain)
	return append(ret, field)
}

// pointer returns the field address, or nil when an embedded pointer on the way is nil.
func (f *fieldPlan) pointer(structPtr unsafe.Pointer) unsafe.Pointer {
	ptr := structPtr
	for i, xField := range f.chain {
		ptr = xField.Pointer(ptr)
		if i < len(f.chain)-1 && f.embedPtr[i] != nil {
			ptr = *(*unsafe.Pointer)(ptr)
			if ptr == nil {
				return nil
			}
		}
	}
	return ptr
}

// settablePointer returns the field address, allocating nil embedded pointers on the way.
func (f *fieldPlan) settablePointer(structPtr unsafe.Pointer) unsafe.Pointer {
	ptr := structPtr
	for i, xField := range f.chain {
		ptr = xField.Pointer(ptr)
		if i < len(f.chain)-1 && f.embedPtr[i] != nil {
			slot := (*unsafe.Pointer)(ptr)
			if *slot == nil {
				*slot = reflect.New(f.embedPtr[i]).UnsafePointer()
			}
			ptr = *slot
		}
	}
	return ptr
}

// isTime reports whether the field holds a time.Time written with its own tag layout.
func (f *fieldPlan) isTime() bool {
	return f.timeLayout != "" && f.rType == timeType
}

func formatName(name string, caseFormat text.CaseFormat) string {
	if name == "ID" {
		switch caseFormat {
		case text.CaseFormatLower, text.CaseFormatLowerCamel, text.CaseFormatLowerUnderscore:
			return "id"
		}
	}
	src := text.DetectCaseFormat(name)
	if !src.IsDefined() {
		src = text.CaseFormatUpperCamel
	}
	return src.Format(name, caseFormat)
}

func isQuotableKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	}
	return false
}

// structPointer returns an address for rv, copying unaddressable values.
func structPointer(rv reflect.Value) unsafe.Pointer {
	if rv.CanAddr() {
		return rv.Addr().UnsafePointer()
	}
	tmp := reflect.New(rv.Type())
	tmp.Elem().Set(rv)
	return tmp.UnsafePointer()
}
