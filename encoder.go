package taskmgr

import "github.com/bytedance/sonic"

// Encoder renders records, results and stats for command line output.
type Encoder interface {
	// Encode serializes a value to bytes.
	Encode(any) ([]byte, error)
	// Decode deserializes bytes to a value.
	Decode([]byte, any) error
}

// JSONEncoder encodes with sonic using encoding/json compatible settings, so
// map keys are sorted and HTML is escaped.
type JSONEncoder struct {
	// Indent pretty prints with two spaces.
	Indent bool
}

func (e *JSONEncoder) Encode(v any) ([]byte, error) {
	if e.Indent {
		return sonic.ConfigStd.MarshalIndent(v, "", "  ")
	}
	return sonic.ConfigStd.Marshal(v)
}

func (*JSONEncoder) Decode(data []byte, v any) error {
	return sonic.ConfigStd.Unmarshal(data, v)
}
