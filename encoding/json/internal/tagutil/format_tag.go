package tagutil

import (
	"reflect"
	"sync"

	"github.com/viant/tagly/format"
	ftime "github.com/viant/tagly/format/time"
)

// FormatFieldTag captures the `format` tag attributes compiled into struct plans.
type FormatFieldTag struct {
	Name          string
	CaseFormat    string
	HasNameOrCase bool
	OmitEmpty     bool
	Ignore        bool
	TimeLayout    string
}

// ResolvedFieldTag is the effective naming and emission policy of a struct field.
type ResolvedFieldTag struct {
	Name      string
	Explicit  bool
	OmitEmpty bool
	Ignore    bool
	Format    FormatFieldTag
}

type cachedFormatTag struct {
	valid      bool
	name       string
	caseFormat string
	omitEmpty  bool
	ignore     bool
	timeLayout string
	dateFormat string
}

var formatTagCache sync.Map // map[string]cachedFormatTag

// ParseFormatFieldTag parses `format` tag attributes of sf.
func ParseFormatFieldTag(sf reflect.StructField, baseName string) FormatFieldTag {
	ret := FormatFieldTag{}
	cached := loadCachedFormatTag(string(sf.Tag))
	if !cached.valid {
		return ret
	}
	ret.OmitEmpty = cached.omitEmpty
	ret.Ignore = cached.ignore
	ret.CaseFormat = cached.caseFormat
	if cached.timeLayout != "" {
		ret.TimeLayout = cached.timeLayout
	} else if cached.dateFormat != "" {
		ret.TimeLayout = ftime.DateFormatToTimeLayout(cached.dateFormat)
	}
	if cached.name != "" || cached.caseFormat != "" {
		tag := &format.Tag{Name: cached.name, CaseFormat: cached.caseFormat}
		if tag.Name == "" {
			tag.Name = baseName
		}
		ret.Name = tag.CaseFormatName("")
		ret.HasNameOrCase = ret.Name != ""
	}
	return ret
}

// ResolveFieldTag resolves precedence between json and format tags:
// an explicit json name wins over a format name or case; json:"-" or
// format ignore drops the field; omitempty is enabled by either tag.
func ResolveFieldTag(sf reflect.StructField) ResolvedFieldTag {
	jTag := ParseJSONTag(sf.Name, sf.Tag.Get("json"))
	fTag := ParseFormatFieldTag(sf, jTag.Name)
	name := jTag.Name
	explicit := jTag.Explicit
	if !explicit && fTag.HasNameOrCase {
		name = fTag.Name
		explicit = true
	}
	return ResolvedFieldTag{
		Name:      name,
		Explicit:  explicit,
		OmitEmpty: jTag.OmitEmpty || fTag.OmitEmpty,
		Ignore:    jTag.Transient || fTag.Ignore,
		Format:    fTag,
	}
}

func loadCachedFormatTag(rawTag string) cachedFormatTag {
	if v, ok := formatTagCache.Load(rawTag); ok {
		return v.(cachedFormatTag)
	}
	cached := cachedFormatTag{}
	tag, err := format.Parse(reflect.StructTag(rawTag))
	if err == nil && tag != nil {
		cached = cachedFormatTag{
			valid:      true,
			name:       tag.Name,
			caseFormat: tag.CaseFormat,
			omitEmpty:  tag.Omitempty,
			ignore:     tag.Ignore,
			timeLayout: tag.TimeLayout,
			dateFormat: tag.DateFormat,
		}
	}
	formatTagCache.Store(rawTag, cached)
	return cached
}
