package wildlife

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

type valueKind uint8

const (
	valueNone valueKind = iota
	valueNumber
	valueString
)

// Value is one observed reading: either a number (temperature, wind speed)
// or a label (pressure trend, moon phase).
type Value struct {
	kind valueKind
	num  float64
	str  string
}

func Num(v float64) Value {
	return Value{kind: valueNumber, num: v}
}

func Str(s string) Value {
	return Value{kind: valueString, str: s}
}

func (v Value) IsZero() bool {
	return v.kind == valueNone
}

func (v Value) IsNumber() bool {
	return v.kind == valueNumber
}

func (v Value) Number() (float64, bool) {
	return v.num, v.kind == valueNumber
}

func (v Value) Text() (string, bool) {
	return v.str, v.kind == valueString
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case valueNumber:
		return v.num == other.num
	case valueString:
		return v.str == other.str
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case valueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case valueString:
		return v.str
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueNumber:
		return json.Marshal(v.num)
	case valueString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case float64:
		*v = Num(x)
	case string:
		*v = Str(x)
	case bool:
		*v = Str(strconv.FormatBool(x))
	default:
		return fmt.Errorf("observed value must be a number or a string, got %s", string(data))
	}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case valueNumber:
		return v.num, nil
	case valueString:
		return v.str, nil
	default:
		return nil, nil
	}
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: observed value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = Num(f)
	default:
		*v = Str(node.Value)
	}
	return nil
}

// Observation maps condition fields (temperature, wind_speed, pressure_trend...)
// to what was observed.
type Observation map[string]Value

func (o Observation) Number(field string) (float64, bool) {
	v, ok := o[field]
	if !ok {
		return 0, false
	}
	return v.Number()
}

func (o Observation) Text(field string) (string, bool) {
	v, ok := o[field]
	if !ok {
		return "", false
	}
	return v.Text()
}

// Clone returns a copy so callers can add derived fields without touching the input.
func (o Observation) Clone() Observation {
	out := make(Observation, len(o)+1)
	for k, v := range o {
		out[k] = v
	}
	return out
}

