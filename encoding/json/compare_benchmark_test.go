package json

import (
	stdjson "encoding/json"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

type compareBasic struct {
	ID   int
	Name string
	Flag bool
}

type compareAdvanced struct {
	ID      int
	Name    string
	Score   float64
	Tags    []string
	Payload map[string]string
	Child   *compareBasic
}

var compareAdvancedInput = compareAdvanced{
	ID:    11,
	Name:  "beta",
	Score: 99.1,
	Tags:  []string{"x", "y", "z"},
	Payload: map[string]string{
		"k1": "1",
		"k2": "v2",
	},
	Child: &compareBasic{ID: 1, Name: "child", Flag: true},
}

var compareAdvancedData = []byte(`{"ID":11,"Name":"beta","Score":99.1,"Tags":["x","y","z"],"Payload":{"k1":"1","k2":"v2"},"Child":{"ID":1,"Name":"child","Flag":true}}`)

func BenchmarkCompare_Marshal_Basic(b *testing.B) {
	in := compareBasic{ID: 7, Name: "alpha", Flag: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Marshal_Basic_Stdlib(b *testing.B) {
	in := compareBasic{ID: 7, Name: "alpha", Flag: true}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := stdjson.Marshal(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Marshal_Basic_Jsoniter(b *testing.B) {
	in := compareBasic{ID: 7, Name: "alpha", Flag: true}
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := api.Marshal(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Marshal_Advanced(b *testing.B) {
	options := NewOptions()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := MarshalWith(compareAdvancedInput, options); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Marshal_Advanced_Jsoniter(b *testing.B) {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := api.Marshal(compareAdvancedInput); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Unmarshal_Advanced(b *testing.B) {
	options := NewOptions()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out compareAdvanced
		if err := UnmarshalWith(compareAdvancedData, &out, options); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Unmarshal_Advanced_Stdlib(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out compareAdvanced
		if err := stdjson.Unmarshal(compareAdvancedData, &out); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare_Unmarshal_Advanced_Jsoniter(b *testing.B) {
	api := jsoniter.ConfigCompatibleWithStandardLibrary
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out compareAdvanced
		if err := api.Unmarshal(compareAdvancedData, &out); err != nil {
			b.Fatal(err)
		}
	}
}
