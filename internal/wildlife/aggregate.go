package wildlife

// Rules scoring at or below this match are not meaningfully triggered by the
// current conditions.
const ruleMatchThreshold = 0.5

type RuleApplication struct {
	RuleID         string     `json:"rule_id"`
	Name           string     `json:"name"`
	Effect         EffectKind `json:"effect_type"`
	MatchScore     float64    `json:"match_score"`
	WeightedEffect float64    `json:"weighted_effect"`
	Confidence     float64    `json:"confidence"`
	Sources        []string   `json:"sources,omitempty"`
}

type HabitatPreference struct {
	RuleID   string   `json:"rule_id"`
	Habitats []string `json:"habitats"`
	Strength float64  `json:"strength"`
}

type RuleOutcome struct {
	Applicable          []RuleApplication   `json:"applicable_rules"`
	ActivityModifier    float64             `json:"activity_modifier"`
	LocationPreferences []HabitatPreference `json:"location_preferences"`
}

// ApplyRules runs every active rule for species/season against observed and
// folds the triggered ones into an activity modifier and habitat preferences.
// The modifier is a plain sum; bounding happens when it is combined with the
// predicted activity. Habitat preference strength is kept within [0, 1].
func ApplyRules(rules []Rule, observed Observation, species, season string) RuleOutcome {
	var out RuleOutcome
	for _, rule := range rules {
		if !rule.AppliesTo(species, season) {
			continue
		}
		match := Match(observed, rule.Conditions)
		if match <= ruleMatchThreshold {
			continue
		}
		weighted := rule.EffectValue * match * rule.EffectiveWeight()
		out.Applicable = append(out.Applicable, RuleApplication{
			RuleID:         rule.ID,
			Name:           rule.Name,
			Effect:         rule.Effect,
			MatchScore:     match,
			WeightedEffect: weighted,
			Confidence:     rule.Confidence,
			Sources:        rule.Sources,
		})
		switch rule.Effect {
		case EffectActivityModifier:
			out.ActivityModifier += weighted * rule.Confidence
		case EffectLocationPreference:
			out.LocationPreferences = append(out.LocationPreferences, HabitatPreference{
				RuleID:   rule.ID,
				Habitats: rule.Habitats,
				Strength: clampUnit(weighted),
			})
		}
	}
	return out
}
