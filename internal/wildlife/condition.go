package wildlife

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Condition is one required-condition constraint of a rule. The variants are
// Range, MinOnly, MaxOnly, MemberOf and Equals.
type Condition interface {
	score(v Value) float64
	validate(field string) error
}

// Range holds inclusive bounds. Outside the range the score falls off by
// 0.1 per unit of distance from the midpoint.
type Range struct {
	Min float64
	Max float64
}

type MinOnly struct {
	Min float64
}

type MaxOnly struct {
	Max float64
}

type MemberOf struct {
	Values []Value
}

type Equals struct {
	Value Value
}

func (c Range) score(v Value) float64 {
	n, ok := v.Number()
	if !ok {
		return 0
	}
	if n >= c.Min && n <= c.Max {
		return 1
	}
	mid := (c.Min + c.Max) / 2
	return math.Max(0, 1-math.Abs(n-mid)/10)
}

func (c MinOnly) score(v Value) float64 {
	n, ok := v.Number()
	if !ok {
		return 0
	}
	if n >= c.Min {
		return 1
	}
	return clampUnit(n / c.Min)
}

func (c MaxOnly) score(v Value) float64 {
	n, ok := v.Number()
	if !ok {
		return 0
	}
	if n <= c.Max {
		return 1
	}
	return clampUnit(c.Max / n)
}

func (c MemberOf) score(v Value) float64 {
	for _, candidate := range c.Values {
		if candidate.Equal(v) {
			return 1
		}
	}
	return 0
}

func (c Equals) score(v Value) float64 {
	if c.Value.Equal(v) {
		return 1
	}
	return 0
}

func (c Range) validate(field string) error {
	if math.IsNaN(c.Min) || math.IsNaN(c.Max) {
		return invalid("conditions."+field, "range bounds must be numbers")
	}
	if c.Min > c.Max {
		return invalid("conditions."+field, "range min %.2f is greater than max %.2f", c.Min, c.Max)
	}
	return nil
}

func (c MinOnly) validate(field string) error {
	if math.IsNaN(c.Min) {
		return invalid("conditions."+field, "min must be a number")
	}
	return nil
}

func (c MaxOnly) validate(field string) error {
	if math.IsNaN(c.Max) {
		return invalid("conditions."+field, "max must be a number")
	}
	return nil
}

func (c MemberOf) validate(field string) error {
	if len(c.Values) == 0 {
		return invalid("conditions."+field, "member set is empty")
	}
	return nil
}

func (c Equals) validate(field string) error {
	if c.Value.IsZero() {
		return invalid("conditions."+field, "equals needs a value")
	}
	return nil
}

// Match scores how well observed conditions satisfy the required ones, in [0,1].
// Required fields missing from observed are skipped; an empty requirement set,
// or one where nothing could be evaluated, scores 1.
func Match(observed Observation, required Conditions) float64 {
	if len(required) == 0 {
		return 1
	}
	total := 0.0
	evaluated := 0
	for _, field := range required.fields() {
		cond := required[field]
		v, ok := observed[field]
		if !ok || cond == nil {
			continue
		}
		total += clampUnit(cond.score(v))
		evaluated++
	}
	if evaluated == 0 {
		return 1
	}
	return total / float64(evaluated)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Conditions is the required-conditions set of a rule. On the wire a field is
// written as {min, max} (either bound optional), a list (member of) or a
// scalar (equals).
type Conditions map[string]Condition

func (c Conditions) fields() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c Conditions) Clone() Conditions {
	if c == nil {
		return nil
	}
	out := make(Conditions, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

type boundsWire struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

func (b boundsWire) condition(field string) (Condition, error) {
	switch {
	case b.Min != nil && b.Max != nil:
		return Range{Min: *b.Min, Max: *b.Max}, nil
	case b.Min != nil:
		return MinOnly{Min: *b.Min}, nil
	case b.Max != nil:
		return MaxOnly{Max: *b.Max}, nil
	default:
		return nil, fmt.Errorf("condition %q: mapping needs min and/or max", field)
	}
}

func conditionWire(cond Condition) any {
	switch c := cond.(type) {
	case Range:
		return boundsWire{Min: &c.Min, Max: &c.Max}
	case MinOnly:
		return boundsWire{Min: &c.Min}
	case MaxOnly:
		return boundsWire{Max: &c.Max}
	case MemberOf:
		return c.Values
	case Equals:
		return c.Value
	default:
		return nil
	}
}

func (c Conditions) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c))
	for field, cond := range c {
		out[field] = conditionWire(cond)
	}
	return json.Marshal(out)
}

func (c *Conditions) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Conditions, len(raw))
	for field, msg := range raw {
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '{':
			var b boundsWire
			if err := json.Unmarshal(trimmed, &b); err != nil {
				return fmt.Errorf("condition %q: %w", field, err)
			}
			cond, err := b.condition(field)
			if err != nil {
				return err
			}
			out[field] = cond
		case '[':
			var values []Value
			if err := json.Unmarshal(trimmed, &values); err != nil {
				return fmt.Errorf("condition %q: %w", field, err)
			}
			out[field] = MemberOf{Values: values}
		default:
			var v Value
			if err := json.Unmarshal(trimmed, &v); err != nil {
				return fmt.Errorf("condition %q: %w", field, err)
			}
			out[field] = Equals{Value: v}
		}
	}
	*c = out
	return nil
}

func (c Conditions) MarshalYAML() (any, error) {
	out := make(map[string]any, len(c))
	for field, cond := range c {
		out[field] = conditionWire(cond)
	}
	return out, nil
}

func (c *Conditions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: conditions must be a mapping", node.Line)
	}
	out := make(Conditions, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		field := node.Content[i].Value
		valueNode := node.Content[i+1]
		switch valueNode.Kind {
		case yaml.MappingNode:
			var b boundsWire
			if err := valueNode.Decode(&b); err != nil {
				return fmt.Errorf("condition %q: %w", field, err)
			}
			cond, err := b.condition(field)
			if err != nil {
				return err
			}
			out[field] = cond
		case yaml.SequenceNode:
			var values []Value
			if err := valueNode.Decode(&values); err != nil {
				return fmt.Errorf("condition %q: %w", field, err)
			}
			out[field] = MemberOf{Values: values}
		default:
			var v Value
			if err := valueNode.Decode(&v); err != nil {
				return fmt.Errorf("condition %q: %w", field, err)
			}
			out[field] = Equals{Value: v}
		}
	}
	*c = out
	return nil
}
