package taskmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONEncoder_Record(t *testing.T) {
	enc := &JSONEncoder{}
	data, err := enc.Encode(Record{Kind: Addition, A: 7, B: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":1,"a":7,"b":3}`, string(data))

	var out Record
	require.NoError(t, enc.Decode([]byte(`{"kind":5,"a":-1,"b":2}`), &out))
	assert.Equal(t, Record{Kind: Modulus, A: -1, B: 2}, out)
}

func TestJSONEncoder_DecodeError(t *testing.T) {
	enc := &JSONEncoder{}
	var out Record
	require.Error(t, enc.Decode([]byte("{"), &out), "expected error for invalid JSON")
}

func TestJSONEncoder_Indent(t *testing.T) {
	data, err := (&JSONEncoder{Indent: true}).Encode(Record{Kind: Division, A: 1, B: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":4,"a":1,"b":2}`, string(data))
	assert.Contains(t, string(data), "\n  \"kind\": 4")
}

func TestJSONEncoder_Result(t *testing.T) {
	enc := &JSONEncoder{}
	in := Result{ID: "d-1", Record: Record{Kind: Addition, A: 1, B: 1}, ExitCode: ExitUnrecognizedKind}
	data, err := enc.Encode(in)
	require.NoError(t, err)
	var out Result
	require.NoError(t, enc.Decode(data, &out))
	assert.Equal(t, in, out)
	assert.ErrorIs(t, out.Err(), ErrUnrecognizedKind)
}
