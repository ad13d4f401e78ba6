package taskmgr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies an arithmetic task. The numeric values are the wire format
// stored in the shared channel.
type Kind int32

const (
	Addition       Kind = 1
	Subtraction    Kind = 2
	Multiplication Kind = 3
	Division       Kind = 4
	Modulus        Kind = 5
)

// AllKinds lists every recognized kind in wire order.
var AllKinds = []Kind{Addition, Subtraction, Multiplication, Division, Modulus}

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool { return k >= Addition && k <= Modulus }

// String returns the display name of the kind.
func (k Kind) String() string {
	switch k {
	case Addition:
		return "Addition"
	case Subtraction:
		return "Subtraction"
	case Multiplication:
		return "Multiplication"
	case Division:
		return "Division"
	case Modulus:
		return "Modulus"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) symbol() string {
	switch k {
	case Addition:
		return "+"
	case Subtraction:
		return "-"
	case Multiplication:
		return "*"
	case Division:
		return "/"
	case Modulus:
		return "%"
	}
	return "?"
}

// ParseKind accepts a wire number ("1".."5") or a case-insensitive name.
// Out-of-range numbers are returned as-is so they can still be dispatched;
// the worker is the one that rejects them.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Kind(n), nil
	}
	for _, k := range AllKinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedKind, s)
}

// Record is the fixed three-integer payload handed from controller to worker.
type Record struct {
	Kind Kind  `json:"kind"`
	A    int32 `json:"a"`
	B    int32 `json:"b"`
}

func (r Record) words() [3]int32 { return [3]int32{int32(r.Kind), r.A, r.B} }

func recordFromWords(w [3]int32) Record { return Record{Kind: Kind(w[0]), A: w[1], B: w[2]} }

// Task is one arithmetic request ready to execute.
type Task struct {
	Kind Kind
	A, B int32
}

// NewTask validates the record's kind and returns the matching Task.
func NewTask(r Record) (Task, error) {
	if !r.Kind.Valid() {
		return Task{}, fmt.Errorf("%w: %d", ErrUnrecognizedKind, int32(r.Kind))
	}
	return Task{Kind: r.Kind, A: r.A, B: r.B}, nil
}

// Outcome is the result of executing a Task. Division-like failures are
// carried in Err; execution itself never fails.
type Outcome struct {
	Kind     Kind
	A, B     int32
	Value    int64
	Quotient float64
	Message  string
	Err      error
}

// Execute computes the task. Integer results are widened to int64 so they
// cannot overflow.
func (t Task) Execute() Outcome {
	o := Outcome{Kind: t.Kind, A: t.A, B: t.B}
	a, b := int64(t.A), int64(t.B)
	switch t.Kind {
	case Addition:
		o.Value = a + b
	case Subtraction:
		o.Value = a - b
	case Multiplication:
		o.Value = a * b
	case Division:
		if b == 0 {
			o.Err = ErrDivisionByZero
			o.Message = "Division by zero error!"
			return o
		}
		o.Quotient = float64(a) / float64(b)
		o.Message = fmt.Sprintf("Division: %d / %d = %.6g", a, b, o.Quotient)
		return o
	case Modulus:
		if b == 0 {
			o.Err = ErrModulusByZero
			o.Message = "Modulus by zero error!"
			return o
		}
		o.Value = a % b
	default:
		o.Err = fmt.Errorf("%w: %d", ErrUnrecognizedKind, int32(t.Kind))
		o.Message = "Invalid task identifier."
		return o
	}
	o.Message = fmt.Sprintf("%s: %d %s %d = %d", t.Kind, a, t.Kind.symbol(), b, o.Value)
	return o
}
