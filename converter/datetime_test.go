package converter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/serializer/encoding/json"
)

func TestDateTime_Encode(t *testing.T) {
	ts := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	eastern := time.FixedZone("EST", -5*3600)

	var testCases = []struct {
		description string
		input       interface{}
		options     []json.Option
		expect      string
	}{
		{description: "default pattern", input: ts, expect: `"2024-01-15T10:30:00.000000Z"`},
		{description: "converted to utc", input: ts.In(eastern), expect: `"2024-01-15T10:30:00.000000Z"`},
		{description: "custom pattern", input: ts, options: []json.Option{json.WithDateTimeFormat("dd/MM/yyyy HH:mm")}, expect: `"15/01/2024 10:30"`},
		{description: "custom location", input: ts, options: []json.Option{json.WithLocation(eastern), json.WithDateTimeFormat("yyyy-MM-dd HH:mm zzz")}, expect: `"2024-01-15 05:30 -05:00"`},
		{
			description: "field layout",
			input: struct {
				Day  time.Time `format:"timeLayout=2006-01-02"`
				When *time.Time
			}{Day: ts, When: &ts},
			expect: `{"Day":"2024-01-15","When":"2024-01-15T10:30:00.000000Z"}`,
		},
	}
	for _, testCase := range testCases {
		options := append([]json.Option{json.WithConverters(DateTime)}, testCase.options...)
		data, err := json.Marshal(testCase.input, options...)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, string(data), testCase.description)
	}
}

func TestDateTime_InvalidPattern(t *testing.T) {
	_, err := json.Marshal(time.Now(), json.WithConverters(DateTime), json.WithDateTimeFormat("yyyy-'MM"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, json.ErrConfiguration))
}

func TestDateTime_Decode(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      time.Time
	}{
		{description: "default pattern", input: `"2024-01-15T10:30:00.000000Z"`, expect: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{description: "rfc3339 offset", input: `"2024-01-15T10:30:00+02:00"`, expect: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)},
		{description: "space separator", input: `"2024-01-15 10:30:00"`, expect: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{description: "fraction", input: `"2024-01-15T10:30:00.25"`, expect: time.Date(2024, 1, 15, 10, 30, 0, 250000000, time.UTC)},
		{description: "date only", input: `"2024-01-15"`, expect: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{description: "us 12 hour", input: `"1/15/2024 3:04:05 PM"`, expect: time.Date(2024, 1, 15, 15, 4, 5, 0, time.UTC)},
		{description: "null", input: `null`, expect: time.Time{}},
	}
	for _, testCase := range testCases {
		var actual time.Time
		err := json.Unmarshal([]byte(testCase.input), &actual, json.WithConverters(DateTime))
		require.NoError(t, err, testCase.description)
		assert.True(t, testCase.expect.Equal(actual), "%s: %v", testCase.description, actual)
	}
}

func TestDateTime_DecodeErrors(t *testing.T) {
	var actual struct{ Birthday time.Time }
	err := json.Unmarshal([]byte(`{"Birthday":"not-a-date"}`), &actual, json.WithConverters(DateTime))
	require.Error(t, err)
	assert.True(t, errors.Is(err, json.ErrFormat))
	assert.Contains(t, err.Error(), `the JSON value "not-a-date" could not be converted to time.Time`)
	assert.Contains(t, err.Error(), "Birthday")

	err = json.Unmarshal([]byte(`{"Birthday":20240115}`), &actual, json.WithConverters(DateTime))
	require.Error(t, err)
	assert.True(t, errors.Is(err, json.ErrFormat))
}

func TestDateTime_FieldLayoutDecode(t *testing.T) {
	var actual struct {
		Day time.Time `format:"timeLayout=02.01.2006"`
	}
	err := json.Unmarshal([]byte(`{"Day":"15.01.2024"}`), &actual, json.WithConverters(DateTime))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), actual.Day)
}
