package json

import (
	stdjson "encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/tagly/format/text"
)

type order struct {
	ID    int
	Total float64
	Items []orderItem
	Owner *owner
}

type orderItem struct {
	SKU string
	Qty int
}

type owner struct {
	Name string
}

func TestUnmarshal_Tolerance(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		options     []Option
		expectErr   bool
	}{
		{description: "plain", input: `{"ID":1,"Items":[{"SKU":"a","Qty":2}]}`},
		{description: "trailing commas", input: `{"ID":1,"Items":[{"SKU":"a","Qty":2,},],}`},
		{description: "trailing commas disabled", input: `{"ID":1,}`, options: []Option{WithTrailingCommas(false)}, expectErr: true},
		{description: "comments", input: "{ // order\n\"ID\": /* id */ 1, \"Items\":[{\"SKU\":\"a\",\"Qty\":2}] }"},
		{description: "comments disabled", input: "{ // order\n\"ID\":1}", options: []Option{WithComments(false)}, expectErr: true},
		{description: "numbers from strings", input: `{"ID":"1","Items":[{"SKU":"a","Qty":"2"}]}`},
		{description: "numbers from strings disabled", input: `{"ID":"1"}`, options: []Option{WithNumberFromString(false)}, expectErr: true},
		{description: "fraction into int", input: `{"ID":1.0}`, expectErr: true},
		{description: "trailing data", input: `{"ID":1} x`, expectErr: true},
		{description: "empty input", input: ``, expectErr: true},
		{description: "lone comma", input: `{,}`, expectErr: true},
		{description: "unterminated trailing comment", input: `{"ID":1} /* never closed`, expectErr: true},
		{description: "unterminated inner comment", input: `{"ID":1, /* "Items":[] }`, expectErr: true},
		{description: "lone slash", input: `{"ID":1} /`, expectErr: true},
	}
	for _, testCase := range testCases {
		var out order
		err := Unmarshal([]byte(testCase.input), &out, testCase.options...)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			assert.True(t, errors.Is(err, ErrFormat), testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, 1, out.ID, testCase.description)
		if assert.Len(t, out.Items, 1, testCase.description) {
			assert.Equal(t, orderItem{SKU: "a", Qty: 2}, out.Items[0], testCase.description)
		}
	}
}

func TestUnmarshal_ErrorPath(t *testing.T) {
	var out order
	err := Unmarshal([]byte(`{"ID":1,"Items":[{"SKU":"a","Qty":1},{"SKU":"b","Qty":"x"}]}`), &out)
	require.Error(t, err)
	var jErr *Error
	require.True(t, errors.As(err, &jErr))
	assert.Equal(t, "Items[1].Qty", jErr.Path)
	assert.True(t, errors.Is(err, ErrFormat))
	assert.Contains(t, err.Error(), "Items[1].Qty")
}

func TestUnmarshal_UnknownFields(t *testing.T) {
	input := []byte(`{"ID":1,"Extra":{"a":[1,2]}}`)
	var out order
	require.NoError(t, Unmarshal(input, &out))
	require.Equal(t, 1, out.ID)

	err := Unmarshal(input, &out, WithUnknownFieldPolicy(ErrorOnUnknown))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestUnmarshal_FieldMatching(t *testing.T) {
	type person struct {
		ID        int
		FirstName string
		Alias     string `json:"nick"`
	}
	var out person
	require.NoError(t, Unmarshal([]byte(`{"id":3,"FIRSTNAME":"Joe","nick":"J"}`), &out))
	require.Equal(t, person{ID: 3, FirstName: "Joe", Alias: "J"}, out)

	out = person{}
	require.NoError(t, Unmarshal([]byte(`{"id":4,"firstName":"Ann"}`), &out, WithCaseFormat(text.CaseFormatLowerCamel)))
	require.Equal(t, person{ID: 4, FirstName: "Ann"}, out)
}

func TestUnmarshal_Pointers(t *testing.T) {
	out := order{Owner: &owner{Name: "old"}}
	require.NoError(t, Unmarshal([]byte(`{"Owner":null}`), &out))
	require.Nil(t, out.Owner)

	require.NoError(t, Unmarshal([]byte(`{"Owner":{"Name":"new"}}`), &out))
	require.Equal(t, &owner{Name: "new"}, out.Owner)

	var ref *order
	require.NoError(t, Unmarshal([]byte(`{"ID":9}`), &ref))
	require.NotNil(t, ref)
	require.Equal(t, 9, ref.ID)
}

func TestUnmarshal_EmbeddedPointer(t *testing.T) {
	type item struct {
		*Base
		Name string
	}
	var out item
	require.NoError(t, Unmarshal([]byte(`{"ID":5,"Name":"x"}`), &out))
	require.NotNil(t, out.Base)
	require.Equal(t, 5, out.ID)
	require.Equal(t, "x", out.Name)
}

func TestUnmarshal_Generic(t *testing.T) {
	var out interface{}
	require.NoError(t, Unmarshal([]byte(`{"a":[1,"x",true,null],"b":{"c":2.5}}`), &out))
	expect := map[string]interface{}{
		"a": []interface{}{float64(1), "x", true, nil},
		"b": map[string]interface{}{"c": 2.5},
	}
	require.Equal(t, expect, out)
}

func TestUnmarshal_Collections(t *testing.T) {
	type holder struct {
		Counts map[string]int
		ByID   map[int]string
		Fixed  [3]int
		Data   []byte
		Quoted int64 `json:"quoted,string"`
	}
	var out holder
	input := `{"Counts":{"a":1,"b":"2"},"ByID":{"7":"x"},"Fixed":[1,2],"Data":"aGk=","quoted":"42"}`
	require.NoError(t, Unmarshal([]byte(input), &out))
	require.Equal(t, map[string]int{"a": 1, "b": 2}, out.Counts)
	require.Equal(t, map[int]string{7: "x"}, out.ByID)
	require.Equal(t, [3]int{1, 2, 0}, out.Fixed)
	require.Equal(t, []byte("hi"), out.Data)
	require.Equal(t, int64(42), out.Quoted)
}

func TestUnmarshal_StringEscapes_Parity(t *testing.T) {
	type payload struct {
		S string
	}
	cases := []string{
		`{"S":"line1\nline2"}`,
		`{"S":"tab\tsep"}`,
		`{"S":"quote:\"ok\""}`,
		`{"S":"slash:\/"}`,
		`{"S":"backslash:\\\\"}`,
		`{"S":"music:\u266B"}`,
		`{"S":"emoji:\uD83D\uDE00"}`,
		`{"S":"lone:\uD83Dx"}`,
		`{"S":"combo:\\\\\"end"}`,
	}
	for _, input := range cases {
		var got payload
		if err := Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("unmarshal failed for %s: %v", input, err)
		}
		var want payload
		if err := stdjson.Unmarshal([]byte(input), &want); err != nil {
			t.Fatalf("stdlib unmarshal failed for %s: %v", input, err)
		}
		if got != want {
			t.Fatalf("mismatch for %s: got=%q want=%q", input, got.S, want.S)
		}
	}
}

func TestUnmarshal_StringEscapes_Invalid(t *testing.T) {
	type payload struct {
		S string
	}
	cases := []string{
		`{"S":"\x"}`,
		`{"S":"\u12"}`,
		"{\"S\":\"unterminated}",
		"{\"S\":\"tab\there\"}",
	}
	for _, input := range cases {
		var got payload
		if err := Unmarshal([]byte(input), &got); err == nil {
			t.Fatalf("expected error for invalid input %s", input)
		}
	}
}

func TestUnmarshal_ConverterDispatch(t *testing.T) {
	type shape struct {
		Origin point
		Path   []point
		Ref    *point
	}
	var out shape
	err := Unmarshal([]byte(`{"Origin":[1,2],"Path":[[3,4],],"Ref":[5,6]}`), &out, WithConverters(pointConverter))
	require.NoError(t, err)
	require.Equal(t, shape{Origin: point{1, 2}, Path: []point{{3, 4}}, Ref: &point{5, 6}}, out)

	err = Unmarshal([]byte(`{"Origin":[1]}`), &out, WithConverters(pointConverter))
	require.Error(t, err)
	var jErr *Error
	require.True(t, errors.As(err, &jErr))
	require.Equal(t, "Origin", jErr.Path)
}

func TestUnmarshal_WriteOnlyConverter(t *testing.T) {
	type holder struct {
		S silent
	}
	var out holder
	err := Unmarshal([]byte(`{"S":{}}`), &out, WithConverters(silentConverter))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupported))
}

func TestUnmarshal_InvalidDestination(t *testing.T) {
	var out order
	require.True(t, errors.Is(Unmarshal([]byte(`{}`), out), ErrUnsupported))
	require.True(t, errors.Is(Unmarshal([]byte(`{}`), nil), ErrUnsupported))
}

type testCustomUnmarshaler struct {
	ID int
}

func (t *testCustomUnmarshaler) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Custom int `json:"custom"`
	}
	if err := stdjson.Unmarshal(data, &tmp); err != nil {
		return err
	}
	t.ID = tmp.Custom
	return nil
}

type testTextCodec string

func (t *testTextCodec) UnmarshalText(text []byte) error {
	*t = testTextCodec("txt:" + string(text))
	return nil
}

func TestUnmarshal_StdlibUnmarshalers(t *testing.T) {
	type holder struct {
		Item testCustomUnmarshaler
		Code testTextCodec
	}
	var out holder
	require.NoError(t, Unmarshal([]byte(`{"Item":{"custom":13},"Code":"xyz"}`), &out))
	require.Equal(t, 13, out.Item.ID)
	require.Equal(t, testTextCodec("txt:xyz"), out.Code)
}

func TestUnmarshal_UnterminatedCommentOffset(t *testing.T) {
	var out map[string]int
	err := Unmarshal([]byte(`{"a":1} /* never closed`), &out)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrFormat))
	require.Contains(t, err.Error(), "at offset 8")
}

func TestUnmarshal_MaxDepth(t *testing.T) {
	arrays := func(depth int) string {
		return strings.Repeat("[", depth) + strings.Repeat("]", depth)
	}
	objects := func(depth int) string {
		return strings.Repeat(`{"a":`, depth) + "1" + strings.Repeat("}", depth)
	}
	type node struct {
		A *node
	}
	var testCases = []struct {
		description string
		input       string
		dest        func() interface{}
		options     []Option
		expectErr   bool
	}{
		{description: "arrays at limit", input: arrays(DefaultMaxDepth), dest: func() interface{} { return new(interface{}) }},
		{description: "arrays past limit", input: arrays(DefaultMaxDepth + 1), dest: func() interface{} { return new(interface{}) }, expectErr: true},
		{description: "objects past limit", input: objects(DefaultMaxDepth + 1), dest: func() interface{} { return new(map[string]interface{}) }, expectErr: true},
		{description: "struct chain past limit", input: strings.Repeat(`{"A":`, DefaultMaxDepth+1) + "null" + strings.Repeat("}", DefaultMaxDepth+1), dest: func() interface{} { return new(node) }, expectErr: true},
		{description: "skipped unknown field past limit", input: `{"Unknown":` + arrays(DefaultMaxDepth) + `}`, dest: func() interface{} { return new(node) }, expectErr: true},
		{description: "converter value past limit", input: `{"Origin":` + arrays(DefaultMaxDepth) + `}`, dest: func() interface{} { return new(struct{ Origin point }) }, options: []Option{WithConverters(pointConverter)}, expectErr: true},
		{description: "very deep input", input: arrays(1 << 20), dest: func() interface{} { return new(interface{}) }, expectErr: true},
		{description: "raised limit", input: arrays(200), dest: func() interface{} { return new(interface{}) }, options: []Option{WithMaxDepth(256)}},
		{description: "non positive limit ignored", input: arrays(DefaultMaxDepth + 1), dest: func() interface{} { return new(interface{}) }, options: []Option{WithMaxDepth(0)}, expectErr: true},
	}
	for _, testCase := range testCases {
		err := Unmarshal([]byte(testCase.input), testCase.dest(), testCase.options...)
		if testCase.expectErr {
			require.Error(t, err, testCase.description)
			assert.True(t, errors.Is(err, ErrFormat), testCase.description)
			assert.Contains(t, err.Error(), "exceeded max depth", testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestUnmarshal_ScalarKinds(t *testing.T) {
	type level int8
	type kinds struct {
		S   string
		B   bool
		I   int
		I8  int8
		I16 int16
		I32 int32
		I64 int64
		U   uint
		U8  uint8
		U16 uint16
		U32 uint32
		U64 uint64
		P   uintptr
		F32 float32
		F64 float64
		L   level
	}
	input := `{"S":"x","B":true,"I":-1,"I8":-8,"I16":-16,"I32":-32,"I64":-64,"U":1,"U8":8,"U16":16,"U32":32,"U64":18446744073709551615,"P":7,"F32":1.5,"F64":-2.25,"L":"3"}`
	var out kinds
	require.NoError(t, Unmarshal([]byte(input), &out))
	assert.Equal(t, kinds{S: "x", B: true, I: -1, I8: -8, I16: -16, I32: -32, I64: -64, U: 1, U8: 8, U16: 16, U32: 32, U64: math.MaxUint64, P: 7, F32: 1.5, F64: -2.25, L: 3}, out)

	data, err := Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"S":"x","B":true,"I":-1,"I8":-8,"I16":-16,"I32":-32,"I64":-64,"U":1,"U8":8,"U16":16,"U32":32,"U64":18446744073709551615,"P":7,"F32":1.5,"F64":-2.25,"L":3}`, string(data))

	var overflow kinds
	err = Unmarshal([]byte(`{"I8":128}`), &overflow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
	assert.Equal(t, int8(0), overflow.I8)

	values := []interface{}{new(string), new(bool), new(int16), new(uint32), new(float32)}
	for i, input := range []string{`"y"`, `false`, `-7`, `9`, `0.5`} {
		require.NoError(t, Unmarshal([]byte(input), values[i]))
	}
	assert.Equal(t, "y", *values[0].(*string))
	assert.Equal(t, false, *values[1].(*bool))
	assert.Equal(t, int16(-7), *values[2].(*int16))
	assert.Equal(t, uint32(9), *values[3].(*uint32))
	assert.Equal(t, float32(0.5), *values[4].(*float32))
}

func TestUnmarshal_TimeLayoutTag(t *testing.T) {
	type event struct {
		Day  time.Time  `format:"timeLayout=2006-01-02"`
		Seen *time.Time `format:"timeLayout=2006-01-02"`
		At   time.Time
	}
	var out event
	err := Unmarshal([]byte(`{"Day":"2024-01-15","Seen":"2024-02-01","At":"2024-03-01T10:00:00Z"}`), &out)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), out.Day)
	require.NotNil(t, out.Seen)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), *out.Seen)
	assert.Equal(t, time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC), out.At)

	eastern := time.FixedZone("EST", -5*3600)
	require.NoError(t, Unmarshal([]byte(`{"Day":"2024-01-15"}`), &out, WithLocation(eastern)))
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, eastern), out.Day)

	require.NoError(t, Unmarshal([]byte(`{"Day":null}`), &out))
	assert.Equal(t, 2024, out.Day.Year())

	err = Unmarshal([]byte(`{"Day":"15/01/2024"}`), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
	var jErr *Error
	require.True(t, errors.As(err, &jErr))
	assert.Equal(t, "Day", jErr.Path)
}

// hashCommentHooks treats # line comments as whitespace.
type hashCommentHooks struct {
	scalarScannerHooks
}

func (h hashCommentHooks) SkipWhitespace(data []byte, pos int) int {
	for {
		pos = h.scalarScannerHooks.SkipWhitespace(data, pos)
		if pos >= len(data) || data[pos] != '#' {
			return pos
		}
		for pos < len(data) && data[pos] != '\n' {
			pos++
		}
	}
}

func TestUnmarshal_ScannerHooks(t *testing.T) {
	input := "# header\n{\"ID\": 1, # inline\n\"Items\": []}"
	var out order
	require.NoError(t, Unmarshal([]byte(input), &out, WithScannerHooks(hashCommentHooks{})))
	assert.Equal(t, 1, out.ID)
	assert.Equal(t, []orderItem{}, out.Items)

	err := Unmarshal([]byte(input), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestDecoder_DecodeValue(t *testing.T) {
	type holder struct {
		Gauge gauge
		Other *gauge
	}
	var out holder
	err := Unmarshal([]byte(`{"Gauge":{"on":true,"count":18446744073709551615,"ratio":0.25},"Other":null}`), &out, WithConverters(gaugeConverter))
	require.NoError(t, err)
	assert.Equal(t, gauge{Enabled: true, Count: math.MaxUint64, Ratio: 0.25}, out.Gauge)
	assert.Nil(t, out.Other)

	err = Unmarshal([]byte(`{"Gauge":{"on":"yes"}}`), &out, WithConverters(gaugeConverter))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
}
