package json

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/tagly/format/text"
)

func TestFormatTag_PerFieldMarshal(t *testing.T) {
	type meta struct {
		TraceID string `json:"traceId"`
	}
	type payload struct {
		UserName string `format:"caseFormat=lowerUnderscore"`
		Secret   string `format:"ignore=true"`
		Note     string `format:"omitempty=true"`
		meta
	}

	in := payload{UserName: "alice", Secret: "hidden", meta: meta{TraceID: "abc"}}
	data, err := Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"user_name":"alice","traceId":"abc"}`, string(data))
}

func TestFormatTag_PerFieldUnmarshal(t *testing.T) {
	type payload struct {
		UserName string `format:"caseFormat=lowerUnderscore"`
		Label    string `format:"name=label_text"`
		Secret   string `format:"ignore=true"`
	}

	var out payload
	err := Unmarshal([]byte(`{"user_name":"alice","label_text":"x","Secret":"s"}`), &out)
	require.NoError(t, err)
	require.Equal(t, payload{UserName: "alice", Label: "x"}, out)
}

func TestTagPrecedence_JSONBeatsFormatName(t *testing.T) {
	type payload struct {
		A int `json:"json_name" format:"name=format_name"`
	}

	data, err := Marshal(payload{A: 7})
	require.NoError(t, err)
	require.JSONEq(t, `{"json_name":7}`, string(data))

	var out payload
	require.NoError(t, Unmarshal([]byte(`{"json_name":9}`), &out))
	require.Equal(t, 9, out.A)

	out = payload{}
	require.NoError(t, Unmarshal([]byte(`{"format_name":9}`), &out))
	require.Equal(t, 0, out.A)
}

func TestTagPrecedence_ExplicitNameBeatsCaseFormat(t *testing.T) {
	type payload struct {
		UserID   int `json:"UserID"`
		UserName string
	}
	data, err := Marshal(payload{UserID: 1, UserName: "x"}, WithCaseFormat(text.CaseFormatLowerUnderscore))
	require.NoError(t, err)
	require.JSONEq(t, `{"UserID":1,"user_name":"x"}`, string(data))
}

type stamp string

func TestFormatTag_LayoutExposedToConverters(t *testing.T) {
	type payload struct {
		Day   stamp `format:"timeLayout=2006-01-02"`
		Plain stamp
	}
	var decoded []string
	recorder := &Converter{
		Name:  "recorder",
		Match: func(t reflect.Type) bool { return t == reflect.TypeOf(stamp("")) },
		Encode: func(enc *Encoder, value reflect.Value) error {
			enc.WriteString(enc.Layout())
			return nil
		},
		Decode: func(dec *Decoder, target reflect.Type) (reflect.Value, error) {
			decoded = append(decoded, dec.Layout())
			return reflect.ValueOf(stamp(dec.Layout())), nil
		},
	}
	data, err := Marshal(payload{}, WithConverters(recorder))
	require.NoError(t, err)
	require.Equal(t, `{"Day":"2006-01-02","Plain":""}`, string(data))

	var out payload
	require.NoError(t, Unmarshal([]byte(`{"Day":"x","Plain":"y"}`), &out, WithConverters(recorder)))
	require.Equal(t, []string{"2006-01-02", ""}, decoded)
	require.Equal(t, stamp("2006-01-02"), out.Day)
}
