package wildlife

import (
	"math"
	"strings"
)

type EffectKind string

const (
	EffectActivityModifier   EffectKind = "activity_modifier"
	EffectLocationPreference EffectKind = "location_preference"
)

// SeasonAll is the rule season wildcard.
const SeasonAll = "all"

const (
	MinRuleWeight = -1.0
	MaxRuleWeight = 2.0
)

type Rule struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Species     []string   `json:"species" yaml:"species"`
	Seasons     []string   `json:"seasons" yaml:"seasons"`
	Habitats    []string   `json:"habitats,omitempty" yaml:"habitats,omitempty"`
	Conditions  Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Effect      EffectKind `json:"effect_type" yaml:"effect_type"`
	EffectValue float64    `json:"effect_value" yaml:"effect_value"`
	Confidence  float64    `json:"confidence" yaml:"confidence"`
	Weight      *float64   `json:"weight,omitempty" yaml:"weight,omitempty"`
	Sources     []string   `json:"sources,omitempty" yaml:"sources,omitempty"`
	Active      bool       `json:"active" yaml:"active"`
}

// EffectiveWeight is the admin-set weight, 1 when none was set.
func (r Rule) EffectiveWeight() float64 {
	if r.Weight == nil {
		return 1
	}
	return *r.Weight
}

func (r Rule) AppliesTo(species, season string) bool {
	if !r.Active {
		return false
	}
	if !containsFold(r.Species, species) {
		return false
	}
	return containsFold(r.Seasons, SeasonAll) || containsFold(r.Seasons, season)
}

// Validate enforces the write contract for rules.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return invalid("id", "must not be empty")
	}
	if len(r.Species) == 0 {
		return invalid("species", "rule %s applies to no species", r.ID)
	}
	if len(r.Seasons) == 0 {
		return invalid("seasons", "rule %s applies to no season (use %q for every season)", r.ID, SeasonAll)
	}
	switch r.Effect {
	case EffectActivityModifier:
		if math.IsNaN(r.EffectValue) || r.EffectValue < -1 || r.EffectValue > 1 {
			return invalid("effect_value", "%s must be within [-1, 1], got %g", r.Effect, r.EffectValue)
		}
	case EffectLocationPreference:
		if math.IsNaN(r.EffectValue) || r.EffectValue < 0 || r.EffectValue > 1 {
			return invalid("effect_value", "%s must be within [0, 1], got %g", r.Effect, r.EffectValue)
		}
		if len(r.Habitats) == 0 {
			return invalid("habitats", "%s rule %s names no habitats", r.Effect, r.ID)
		}
	default:
		return invalid("effect_type", "unknown effect %q", r.Effect)
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return invalid("confidence", "must be within [0, 1], got %g", r.Confidence)
	}
	if r.Weight != nil {
		if err := ValidateWeight(*r.Weight); err != nil {
			return err
		}
	}
	for _, field := range r.Conditions.fields() {
		cond := r.Conditions[field]
		if cond == nil {
			return invalid("conditions."+field, "missing constraint")
		}
		if err := cond.validate(field); err != nil {
			return err
		}
	}
	return nil
}

func ValidateWeight(w float64) error {
	if math.IsNaN(w) || w < MinRuleWeight || w > MaxRuleWeight {
		return invalid("weight", "must be within [%g, %g], got %g", MinRuleWeight, MaxRuleWeight, w)
	}
	return nil
}

// Clone deep-copies slices and conditions so stored rules never alias caller memory.
func (r Rule) Clone() Rule {
	out := r
	out.Species = append([]string(nil), r.Species...)
	out.Seasons = append([]string(nil), r.Seasons...)
	out.Habitats = append([]string(nil), r.Habitats...)
	out.Sources = append([]string(nil), r.Sources...)
	out.Conditions = r.Conditions.Clone()
	if r.Weight != nil {
		w := *r.Weight
		out.Weight = &w
	}
	return out
}

func containsFold(values []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}
