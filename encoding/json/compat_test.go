package json

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

type compatRecord struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Score    float64           `json:"score"`
	Active   bool              `json:"active"`
	Tags     []string          `json:"tags"`
	Labels   map[string]string `json:"labels"`
	Child    *compatRecord     `json:"child,omitempty"`
	Note     string            `json:"note,omitempty"`
	Payload  []byte            `json:"payload"`
	Counters [2]uint8          `json:"counters"`
}

var compatAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func compatSample() compatRecord {
	return compatRecord{
		ID:       7,
		Name:     "alpha <&> \"quoted\"",
		Score:    99.25,
		Active:   true,
		Tags:     []string{"x", "y"},
		Labels:   map[string]string{"b": "2", "a": "1"},
		Child:    &compatRecord{ID: 8, Name: "child", Tags: []string{}, Labels: map[string]string{}, Payload: []byte{}},
		Payload:  []byte("payload"),
		Counters: [2]uint8{1, 2},
	}
}

func TestCompat_MarshalMatchesJsoniter(t *testing.T) {
	in := compatSample()
	expect, err := compatAPI.Marshal(in)
	require.NoError(t, err)
	actual, err := Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, string(expect), string(actual))
}

func TestCompat_UnmarshalMatchesJsoniter(t *testing.T) {
	data, err := compatAPI.Marshal(compatSample())
	require.NoError(t, err)

	var expect compatRecord
	require.NoError(t, compatAPI.Unmarshal(data, &expect))
	var actual compatRecord
	require.NoError(t, Unmarshal(data, &actual))
	require.Equal(t, expect, actual)
}

func TestCompat_GenericUnmarshalMatchesJsoniter(t *testing.T) {
	data := []byte(`{"a":[1,2.5,"x",null,true],"b":{"c":{"d":[]}},"e":-0.5e3}`)
	var expect interface{}
	require.NoError(t, compatAPI.Unmarshal(data, &expect))
	var actual interface{}
	require.NoError(t, Unmarshal(data, &actual))
	require.Equal(t, expect, actual)
}
