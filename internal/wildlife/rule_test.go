package wildlife

import (
	"errors"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func validRule() Rule {
	return Rule{
		ID:          "test_rule",
		Name:        "Test rule",
		Species:     []string{SpeciesMoose},
		Seasons:     []string{"rut"},
		Conditions:  Conditions{FieldTemperature: MaxOnly{Max: 10}},
		Effect:      EffectActivityModifier,
		EffectValue: 0.2,
		Confidence:  0.5,
		Active:      true,
	}
}

func TestBuiltInRulesAreValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, rule := range BuiltInRules() {
		if seen[rule.ID] {
			t.Fatalf("duplicate rule id %s", rule.ID)
		}
		seen[rule.ID] = true
		if err := rule.Validate(); err != nil {
			t.Fatalf("built-in rule %s is invalid: %v", rule.ID, err)
		}
	}
}

func TestRuleValidateRejectsOutOfBoundValues(t *testing.T) {
	cases := map[string]func(*Rule){
		"location preference above 1": func(r *Rule) {
			r.Effect = EffectLocationPreference
			r.EffectValue = 1.5
			r.Habitats = []string{"bogs"}
		},
		"location preference without habitats": func(r *Rule) {
			r.Effect = EffectLocationPreference
			r.EffectValue = 0.5
		},
		"activity modifier below -1": func(r *Rule) { r.EffectValue = -1.2 },
		"confidence above 1":         func(r *Rule) { r.Confidence = 1.1 },
		"weight above 2":             func(r *Rule) { r.Weight = ptr(2.5) },
		"unknown effect":             func(r *Rule) { r.Effect = "teleport" },
		"no species":                 func(r *Rule) { r.Species = nil },
		"no seasons":                 func(r *Rule) { r.Seasons = nil },
		"empty member set":           func(r *Rule) { r.Conditions = Conditions{"time_of_day": MemberOf{}} },
		"inverted range":             func(r *Rule) { r.Conditions = Conditions{FieldTemperature: Range{Min: 10, Max: 0}} },
		"NaN effect":                 func(r *Rule) { r.EffectValue = math.NaN() },
	}
	for name, mutate := range cases {
		rule := validRule()
		mutate(&rule)
		err := rule.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	rule := validRule()
	rule.Weight = ptr(-1)
	if err := rule.Validate(); err != nil {
		t.Fatalf("expected weight -1 to be accepted, got %v", err)
	}
}

func TestRuleAppliesToSeasonAndSpecies(t *testing.T) {
	rule := validRule()
	if !rule.AppliesTo("MOOSE", "Rut") {
		t.Fatalf("expected case-insensitive species and season match")
	}
	if rule.AppliesTo(SpeciesElk, "rut") || rule.AppliesTo(SpeciesMoose, "wintering") {
		t.Fatalf("expected rule to be limited to moose in the rut")
	}
	rule.Seasons = []string{SeasonAll}
	if !rule.AppliesTo(SpeciesMoose, "wintering") {
		t.Fatalf("expected %q to match every season", SeasonAll)
	}
	rule.Active = false
	if rule.AppliesTo(SpeciesMoose, "wintering") {
		t.Fatalf("expected inactive rule not to apply")
	}
}

func TestApplyRulesWeightsAndThreshold(t *testing.T) {
	strong := validRule()
	weak := validRule()
	weak.ID = "weak"
	weak.Conditions = Conditions{FieldTemperature: MaxOnly{Max: 4}}
	doubled := validRule()
	doubled.ID = "doubled"
	doubled.Weight = ptr(2)
	refuge := Rule{
		ID:          "refuge",
		Species:     []string{SpeciesMoose},
		Seasons:     []string{SeasonAll},
		Habitats:    []string{"bogs"},
		Conditions:  Conditions{FieldTemperature: MaxOnly{Max: 10}},
		Effect:      EffectLocationPreference,
		EffectValue: 0.6,
		Confidence:  0.9,
		Active:      true,
	}

	// 10C scores 1 for strong/doubled and 0.4 for weak.
	out := ApplyRules([]Rule{strong, weak, doubled, refuge}, Observation{FieldTemperature: Num(10)}, SpeciesMoose, "rut")
	if len(out.Applicable) != 3 {
		t.Fatalf("expected three applicable rules, got %+v", out.Applicable)
	}
	for _, app := range out.Applicable {
		if app.RuleID == "weak" {
			t.Fatalf("expected weak match to be excluded, got %+v", app)
		}
	}
	if out.Applicable[1].WeightedEffect != 0.4 {
		t.Fatalf("expected weight 2 to double the effect, got %f", out.Applicable[1].WeightedEffect)
	}
	// 0.2*0.5 + 0.4*0.5
	if math.Abs(out.ActivityModifier-0.3) > 1e-9 {
		t.Fatalf("expected activity modifier 0.3, got %f", out.ActivityModifier)
	}
	if len(out.LocationPreferences) != 1 || out.LocationPreferences[0].Strength != 0.6 {
		t.Fatalf("expected one location preference of 0.6, got %+v", out.LocationPreferences)
	}
}

func TestApplyRulesBoundsPreferenceStrength(t *testing.T) {
	pref := func(id string, weight float64) Rule {
		return Rule{
			ID:          id,
			Species:     []string{SpeciesMoose},
			Seasons:     []string{SeasonAll},
			Habitats:    []string{id + "_habitat"},
			Effect:      EffectLocationPreference,
			EffectValue: 0.8,
			Confidence:  0.9,
			Weight:      ptr(weight),
			Active:      true,
		}
	}
	out := ApplyRules([]Rule{pref("boosted", 2), pref("inverted", -1)}, Observation{}, SpeciesMoose, "rut")
	if len(out.LocationPreferences) != 2 {
		t.Fatalf("expected two preferences, got %+v", out.LocationPreferences)
	}
	if got := out.LocationPreferences[0].Strength; got != 1 {
		t.Fatalf("expected weight 2 preference capped at 1, got %f", got)
	}
	if got := out.LocationPreferences[1].Strength; got != 0 {
		t.Fatalf("expected negative preference floored at 0, got %f", got)
	}
	if got := out.Applicable[0].WeightedEffect; math.Abs(got-1.6) > 1e-9 {
		t.Fatalf("expected the applied effect to keep 1.6, got %f", got)
	}

	recs := recommendHabitats(Phase{Name: "rut"}, out.LocationPreferences)
	for _, rec := range recs {
		if rec.Priority < 0 || rec.Priority > 1 {
			t.Fatalf("priority out of [0, 1]: %+v", rec)
		}
	}
}

func TestRuleDecodesFromYAML(t *testing.T) {
	raw := `
id: moose_fog_bedding
name: Fog bedding
species: [moose]
seasons: [all]
habitats: [spruce_bogs]
conditions:
  humidity: {min: 90}
effect_type: location_preference
effect_value: 0.6
confidence: 0.5
weight: 1.5
active: true
`
	var rule Rule
	if err := yaml.Unmarshal([]byte(raw), &rule); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := rule.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if rule.EffectiveWeight() != 1.5 {
		t.Fatalf("expected weight 1.5, got %f", rule.EffectiveWeight())
	}
	if _, ok := rule.Conditions["humidity"].(MinOnly); !ok {
		t.Fatalf("expected humidity min condition, got %#v", rule.Conditions["humidity"])
	}
}
