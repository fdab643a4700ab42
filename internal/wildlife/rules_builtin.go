package wildlife

// Observation fields referenced by the built-in rules besides the predictor fields.
const (
	FieldSnowDepth       = "snow_depth"
	FieldMoonPhase       = "moon_phase"
	FieldTimeOfDay       = "time_of_day"
	FieldHuntingPressure = "hunting_pressure"
	FieldMastCrop        = "mast_crop"
)

func strs(values ...string) []Value {
	out := make([]Value, 0, len(values))
	for _, v := range values {
		out = append(out, Str(v))
	}
	return out
}

// BuiltInRules is the compiled-in behavioral rule table. Sources cite the
// field studies each rule was taken from.
func BuiltInRules() []Rule {
	return []Rule{
		{
			ID:          "moose_heat_avoidance",
			Name:        "Moose heat avoidance",
			Description: "Moose reduce movement and feeding once air temperature passes their heat-stress threshold.",
			Species:     []string{SpeciesMoose},
			Seasons:     []string{SeasonAll},
			Habitats:    []string{"dense_conifer", "wetlands", "north_facing_slopes"},
			Conditions:  Conditions{FieldTemperature: MinOnly{Min: 14}},
			Effect:      EffectActivityModifier,
			EffectValue: -0.4,
			Confidence:  0.9,
			Sources:     []string{"renecker_hudson_1986", "mccann_2013"},
			Active:      true,
		},
		{
			ID:          "moose_thermal_refuge",
			Name:        "Moose seek thermal refuge",
			Description: "In heat moose shift to water and closed canopy.",
			Species:     []string{SpeciesMoose},
			Seasons:     []string{SeasonAll},
			Habitats:    []string{"ponds", "lake_shallows", "dense_conifer"},
			Conditions:  Conditions{FieldTemperature: MinOnly{Min: 14}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.85,
			Confidence:  0.85,
			Sources:     []string{"van_beest_2012"},
			Active:      true,
		},
		{
			ID:          "moose_cold_calm_rut",
			Name:        "Cold calm rut mornings",
			Description: "Bulls call and travel more on cold, still days during the rut.",
			Species:     []string{SpeciesMoose},
			Seasons:     []string{"rut", "pre_rut"},
			Conditions: Conditions{
				FieldTemperature: Range{Min: -5, Max: 10},
				FieldWindSpeed:   MaxOnly{Max: 10},
			},
			Effect:      EffectActivityModifier,
			EffectValue: 0.2,
			Confidence:  0.7,
			Sources:     []string{"mdifw_moose_survey"},
			Active:      true,
		},
		{
			ID:          "moose_deep_snow_yarding",
			Name:        "Deep snow yarding",
			Description: "Snow deeper than ~70cm pushes moose into conifer yards.",
			Species:     []string{SpeciesMoose},
			Seasons:     []string{"wintering"},
			Habitats:    []string{"conifer_stands", "browse_thickets"},
			Conditions:  Conditions{FieldSnowDepth: MinOnly{Min: 70}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.9,
			Confidence:  0.8,
			Sources:     []string{"coady_1974"},
			Active:      true,
		},
		{
			ID:          "whitetail_cold_front",
			Name:        "Cold front movement",
			Description: "Falling pressure ahead of a front with cooling temperatures increases deer movement.",
			Species:     []string{SpeciesWhitetailDeer},
			Seasons:     []string{SeasonAll},
			Conditions: Conditions{
				FieldPressureTrend: Equals{Value: Str("falling")},
				FieldTemperature:   MaxOnly{Max: 12},
			},
			Effect:      EffectActivityModifier,
			EffectValue: 0.25,
			Confidence:  0.75,
			Sources:     []string{"webb_2010"},
			Active:      true,
		},
		{
			ID:          "whitetail_rut_daylight",
			Name:        "Daylight rut cruising",
			Description: "Bucks search for does through daylight hours at peak rut.",
			Species:     []string{SpeciesWhitetailDeer},
			Seasons:     []string{"rut"},
			Conditions:  Conditions{FieldTimeOfDay: MemberOf{Values: strs("dawn", "midday", "dusk")}},
			Effect:      EffectActivityModifier,
			EffectValue: 0.15,
			Confidence:  0.7,
			Sources:     []string{"karns_2011"},
			Active:      true,
		},
		{
			ID:          "whitetail_pressure_retreat",
			Name:        "Pressure retreat",
			Description: "Heavy hunting pressure moves deer into the thickest cover available.",
			Species:     []string{SpeciesWhitetailDeer},
			Seasons:     []string{SeasonAll},
			Habitats:    []string{"thick_bedding_cover", "swamps", "cedar_thickets"},
			Conditions:  Conditions{FieldHuntingPressure: MemberOf{Values: strs("high", "extreme")}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.9,
			Confidence:  0.8,
			Sources:     []string{"little_2016"},
			Active:      true,
		},
		{
			ID:          "whitetail_pressure_nocturnal",
			Name:        "Pressure turns deer nocturnal",
			Species:     []string{SpeciesWhitetailDeer},
			Seasons:     []string{SeasonAll},
			Conditions:  Conditions{FieldHuntingPressure: MemberOf{Values: strs("high", "extreme")}},
			Effect:      EffectActivityModifier,
			EffectValue: -0.3,
			Confidence:  0.75,
			Sources:     []string{"little_2016"},
			Active:      true,
		},
		{
			ID:          "whitetail_acorn_drop",
			Name:        "Acorn drop",
			Description: "A good white oak crop concentrates deer on mast.",
			Species:     []string{SpeciesWhitetailDeer},
			Seasons:     []string{"pre_rut", "post_rut"},
			Habitats:    []string{"oak_flats", "white_oak_ridges"},
			Conditions:  Conditions{FieldMastCrop: MemberOf{Values: strs("good", "bumper")}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.8,
			Confidence:  0.7,
			Sources:     []string{"mcshea_2000"},
			Active:      true,
		},
		{
			ID:          "elk_wind_timber",
			Name:        "Wind drives elk into timber",
			Species:     []string{SpeciesElk},
			Seasons:     []string{SeasonAll},
			Habitats:    []string{"dark_timber", "leeward_slopes"},
			Conditions:  Conditions{FieldWindSpeed: MinOnly{Min: 25}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.75,
			Confidence:  0.7,
			Sources:     []string{"rmef_field_notes"},
			Active:      true,
		},
		{
			ID:          "elk_cool_bugling",
			Name:        "Cool bugling weather",
			Species:     []string{SpeciesElk},
			Seasons:     []string{"rut"},
			Conditions:  Conditions{FieldTemperature: Range{Min: -2, Max: 12}},
			Effect:      EffectActivityModifier,
			EffectValue: 0.2,
			Confidence:  0.65,
			Sources:     []string{"bender_2003"},
			Active:      true,
		},
		{
			ID:          "shared_full_moon",
			Name:        "Full moon night feeding",
			Description: "Ungulates feed more at night under a full moon and move less by day.",
			Species:     []string{SpeciesWhitetailDeer, SpeciesElk, SpeciesMoose},
			Seasons:     []string{SeasonAll},
			Conditions:  Conditions{FieldMoonPhase: Equals{Value: Str("full")}},
			Effect:      EffectActivityModifier,
			EffectValue: -0.1,
			Confidence:  0.5,
			Sources:     []string{"beier_mccullough_1990"},
			Active:      true,
		},
		{
			ID:          "black_bear_mast_failure",
			Name:        "Mast failure raids",
			Description: "When the hard mast fails bears range widely into farms and orchards.",
			Species:     []string{SpeciesBlackBear},
			Seasons:     []string{"hyperphagia"},
			Habitats:    []string{"cornfields", "orchards", "berry_patches"},
			Conditions:  Conditions{FieldMastCrop: MemberOf{Values: strs("poor", "failure")}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.85,
			Confidence:  0.75,
			Sources:     []string{"ryan_2007"},
			Active:      true,
		},
		{
			ID:          "black_bear_heat",
			Name:        "Bear midday heat lull",
			Species:     []string{SpeciesBlackBear},
			Seasons:     []string{SeasonAll},
			Conditions:  Conditions{FieldTemperature: MinOnly{Min: 27}},
			Effect:      EffectActivityModifier,
			EffectValue: -0.25,
			Confidence:  0.7,
			Sources:     []string{"bridges_2004"},
			Active:      true,
		},
		{
			ID:          "turkey_rain_fields",
			Name:        "Rain pushes turkeys to open fields",
			Species:     []string{SpeciesWildTurkey},
			Seasons:     []string{SeasonAll},
			Habitats:    []string{"open_fields", "pastures"},
			Conditions:  Conditions{FieldPrecipitation: MinOnly{Min: 0.1}},
			Effect:      EffectLocationPreference,
			EffectValue: 0.7,
			Confidence:  0.7,
			Sources:     []string{"nwtf_guide"},
			Active:      true,
		},
		{
			ID:          "turkey_calm_gobbling",
			Name:        "Calm morning gobbling",
			Species:     []string{SpeciesWildTurkey},
			Seasons:     []string{"breeding"},
			Conditions:  Conditions{FieldWindSpeed: MaxOnly{Max: 8}},
			Effect:      EffectActivityModifier,
			EffectValue: 0.2,
			Confidence:  0.6,
			Sources:     []string{"miller_1997"},
			Active:      true,
		},
	}
}
