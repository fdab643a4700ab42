package wildlife

import "time"

func peakOn(month time.Month, day int) *MonthDay {
	md := MD(month, day)
	return &md
}

// BuiltInModels is the compiled-in seasonal model table. Every model covers
// the full calendar year, Feb 29 included.
func BuiltInModels() []SeasonalModel {
	return []SeasonalModel{
		{
			Species:  SpeciesMoose,
			Region:   "northeast",
			Accuracy: 0.82,
			Temperature: TemperatureProfile{
				HeatThresholdC:   14,
				HeatSensitivity:  0.03,
				RutFavorableMinC: -5,
				RutFavorableMaxC: 10,
				RutBonus:         0.1,
			},
			Phases: []Phase{
				{Name: "winter_yard", Start: MD(time.November, 16), End: MD(time.April, 14), BaseActivity: 0.35,
					HabitatFocus: []string{"conifer_stands", "south_facing_slopes", "browse_thickets"}, Behavior: "wintering"},
				{Name: "spring_green_up", Start: MD(time.April, 15), End: MD(time.June, 15), Peak: peakOn(time.May, 25), BaseActivity: 0.5,
					HabitatFocus: []string{"wetlands", "aspen_regrowth", "riparian_edges"}, Behavior: "calving"},
				{Name: "summer_aquatic", Start: MD(time.June, 16), End: MD(time.August, 31), BaseActivity: 0.45,
					HabitatFocus: []string{"ponds", "lake_shallows", "beaver_flowage"}, Behavior: "summer_feeding"},
				{Name: "pre_rut", Start: MD(time.September, 1), End: MD(time.September, 19), BaseActivity: 0.65,
					HabitatFocus: []string{"clearcuts", "bog_edges", "hardwood_ridges"}, Behavior: "pre_rut"},
				{Name: "rut_peak", Start: MD(time.September, 20), End: MD(time.October, 15), Peak: peakOn(time.October, 1), BaseActivity: 0.85,
					HabitatFocus: []string{"bogs", "clearcuts", "logging_roads"}, Behavior: "rut"},
				{Name: "post_rut", Start: MD(time.October, 16), End: MD(time.November, 15), BaseActivity: 0.55,
					HabitatFocus: []string{"regenerating_cuts", "mixed_forest"}, Behavior: "post_rut"},
			},
		},
		{
			Species:  SpeciesMoose,
			Region:   "alaska",
			Accuracy: 0.78,
			Temperature: TemperatureProfile{
				HeatThresholdC:   12,
				HeatSensitivity:  0.035,
				RutFavorableMinC: -10,
				RutFavorableMaxC: 8,
				RutBonus:         0.1,
			},
			Phases: []Phase{
				{Name: "winter_yard", Start: MD(time.November, 1), End: MD(time.April, 30), BaseActivity: 0.3,
					HabitatFocus: []string{"willow_flats", "river_bottoms", "spruce_cover"}, Behavior: "wintering"},
				{Name: "calving", Start: MD(time.May, 1), End: MD(time.June, 20), Peak: peakOn(time.May, 20), BaseActivity: 0.45,
					HabitatFocus: []string{"islands", "spruce_bogs", "riparian_edges"}, Behavior: "calving"},
				{Name: "summer_feeding", Start: MD(time.June, 21), End: MD(time.August, 24), BaseActivity: 0.45,
					HabitatFocus: []string{"lake_shallows", "willow_flats", "burns"}, Behavior: "summer_feeding"},
				{Name: "rut_peak", Start: MD(time.August, 25), End: MD(time.October, 5), Peak: peakOn(time.September, 25), BaseActivity: 0.85,
					HabitatFocus: []string{"timberline_willows", "ridges", "river_bottoms"}, Behavior: "rut"},
				{Name: "post_rut", Start: MD(time.October, 6), End: MD(time.October, 31), BaseActivity: 0.5,
					HabitatFocus: []string{"willow_flats", "burns"}, Behavior: "post_rut"},
			},
		},
		{
			Species:  SpeciesWhitetailDeer,
			Region:   "midwest",
			Accuracy: 0.85,
			Temperature: TemperatureProfile{
				HeatThresholdC:   24,
				HeatSensitivity:  0.02,
				RutFavorableMinC: -5,
				RutFavorableMaxC: 7,
				RutBonus:         0.12,
			},
			Phases: []Phase{
				{Name: "winter", Start: MD(time.December, 21), End: MD(time.March, 15), BaseActivity: 0.4,
					HabitatFocus: []string{"south_facing_slopes", "conifer_thermal_cover", "food_plots"}, Behavior: "wintering"},
				{Name: "spring_green_up", Start: MD(time.March, 16), End: MD(time.May, 20), BaseActivity: 0.5,
					HabitatFocus: []string{"green_fields", "hardwood_edges"}, Behavior: "green_up"},
				{Name: "fawning", Start: MD(time.May, 21), End: MD(time.July, 15), Peak: peakOn(time.June, 5), BaseActivity: 0.45,
					HabitatFocus: []string{"tall_grass", "brushy_edges", "creek_bottoms"}, Behavior: "fawning"},
				{Name: "summer_pattern", Start: MD(time.July, 16), End: MD(time.September, 15), BaseActivity: 0.5,
					HabitatFocus: []string{"soybean_fields", "alfalfa", "shaded_bedding"}, Behavior: "summer_pattern"},
				{Name: "early_season", Start: MD(time.September, 16), End: MD(time.October, 24), BaseActivity: 0.6,
					HabitatFocus: []string{"oak_flats", "field_edges", "staging_areas"}, Behavior: "pre_rut"},
				{Name: "rut_peak", Start: MD(time.October, 25), End: MD(time.November, 25), Peak: peakOn(time.November, 10), BaseActivity: 0.9,
					HabitatFocus: []string{"funnels", "bedding_edges", "scrape_lines", "pinch_points"}, Behavior: "rut"},
				{Name: "post_rut", Start: MD(time.November, 26), End: MD(time.December, 20), BaseActivity: 0.55,
					HabitatFocus: []string{"cut_corn", "thick_bedding_cover"}, Behavior: "post_rut"},
			},
		},
		{
			Species:  SpeciesWhitetailDeer,
			Region:   "southeast",
			Accuracy: 0.72,
			Temperature: TemperatureProfile{
				HeatThresholdC:   27,
				HeatSensitivity:  0.02,
				RutFavorableMinC: 0,
				RutFavorableMaxC: 13,
				RutBonus:         0.1,
			},
			Phases: []Phase{
				{Name: "late_winter", Start: MD(time.January, 11), End: MD(time.March, 20), BaseActivity: 0.45,
					HabitatFocus: []string{"pine_thickets", "food_plots", "creek_bottoms"}, Behavior: "wintering"},
				{Name: "spring_green_up", Start: MD(time.March, 21), End: MD(time.June, 10), BaseActivity: 0.5,
					HabitatFocus: []string{"clover_plots", "hardwood_edges"}, Behavior: "green_up"},
				{Name: "summer_pattern", Start: MD(time.June, 11), End: MD(time.September, 10), BaseActivity: 0.45,
					HabitatFocus: []string{"shaded_bottoms", "soybean_fields"}, Behavior: "summer_pattern"},
				{Name: "early_season", Start: MD(time.September, 11), End: MD(time.October, 31), BaseActivity: 0.55,
					HabitatFocus: []string{"persimmon_trees", "oak_flats", "field_edges"}, Behavior: "pre_rut"},
				{Name: "pre_rut", Start: MD(time.November, 1), End: MD(time.November, 19), BaseActivity: 0.65,
					HabitatFocus: []string{"scrape_lines", "oak_flats"}, Behavior: "pre_rut"},
				{Name: "rut_peak", Start: MD(time.November, 20), End: MD(time.January, 10), Peak: peakOn(time.December, 15), BaseActivity: 0.85,
					HabitatFocus: []string{"funnels", "swamp_edges", "pinch_points"}, Behavior: "rut"},
			},
		},
		{
			Species:  SpeciesElk,
			Region:   "rocky_mountains",
			Accuracy: 0.8,
			Temperature: TemperatureProfile{
				HeatThresholdC:   18,
				HeatSensitivity:  0.025,
				RutFavorableMinC: -2,
				RutFavorableMaxC: 12,
				RutBonus:         0.1,
			},
			Phases: []Phase{
				{Name: "winter_range", Start: MD(time.December, 1), End: MD(time.March, 31), BaseActivity: 0.4,
					HabitatFocus: []string{"low_elevation_sage", "wind_blown_ridges", "south_facing_slopes"}, Behavior: "wintering"},
				{Name: "spring_migration", Start: MD(time.April, 1), End: MD(time.May, 20), BaseActivity: 0.55,
					HabitatFocus: []string{"greening_meadows", "south_facing_slopes"}, Behavior: "migration"},
				{Name: "calving", Start: MD(time.May, 21), End: MD(time.June, 30), Peak: peakOn(time.June, 1), BaseActivity: 0.45,
					HabitatFocus: []string{"aspen_stands", "timber_edges"}, Behavior: "calving"},
				{Name: "summer_high_country", Start: MD(time.July, 1), End: MD(time.August, 31), BaseActivity: 0.5,
					HabitatFocus: []string{"alpine_meadows", "north_facing_timber", "wallows"}, Behavior: "summer_feeding"},
				{Name: "rut_peak", Start: MD(time.September, 1), End: MD(time.October, 10), Peak: peakOn(time.September, 22), BaseActivity: 0.9,
					HabitatFocus: []string{"meadows", "wallows", "dark_timber_edges"}, Behavior: "rut"},
				{Name: "fall_transition", Start: MD(time.October, 11), End: MD(time.November, 30), BaseActivity: 0.55,
					HabitatFocus: []string{"dark_timber", "north_facing_slopes"}, Behavior: "post_rut"},
			},
		},
		{
			Species:  SpeciesBlackBear,
			Region:   "appalachia",
			Accuracy: 0.76,
			Temperature: TemperatureProfile{
				HeatThresholdC:  27,
				HeatSensitivity: 0.015,
			},
			Phases: []Phase{
				{Name: "denning", Start: MD(time.December, 16), End: MD(time.March, 31), BaseActivity: 0.05,
					HabitatFocus: []string{"rock_outcrops", "laurel_thickets", "blowdowns"}, Behavior: "denning"},
				{Name: "spring_emergence", Start: MD(time.April, 1), End: MD(time.May, 31), BaseActivity: 0.45,
					HabitatFocus: []string{"south_facing_slopes", "skunk_cabbage_wetlands"}, Behavior: "emergence"},
				{Name: "breeding", Start: MD(time.June, 1), End: MD(time.July, 31), Peak: peakOn(time.June, 25), BaseActivity: 0.6,
					HabitatFocus: []string{"berry_patches", "ridgelines"}, Behavior: "breeding"},
				{Name: "late_summer", Start: MD(time.August, 1), End: MD(time.September, 15), BaseActivity: 0.55,
					HabitatFocus: []string{"blackberry_patches", "cornfields"}, Behavior: "summer_feeding"},
				{Name: "hyperphagia", Start: MD(time.September, 16), End: MD(time.November, 30), Peak: peakOn(time.October, 15), BaseActivity: 0.85,
					HabitatFocus: []string{"oak_ridges", "beech_stands", "orchards"}, Behavior: "hyperphagia"},
				{Name: "pre_den", Start: MD(time.December, 1), End: MD(time.December, 15), BaseActivity: 0.3,
					HabitatFocus: []string{"laurel_thickets", "rock_outcrops"}, Behavior: "pre_den"},
			},
		},
		{
			Species:  SpeciesWildTurkey,
			Region:   "eastern",
			Accuracy: 0.74,
			Temperature: TemperatureProfile{
				HeatThresholdC:  30,
				HeatSensitivity: 0.01,
			},
			Phases: []Phase{
				{Name: "winter_flock", Start: MD(time.December, 1), End: MD(time.March, 10), BaseActivity: 0.5,
					HabitatFocus: []string{"ag_fields", "south_facing_slopes", "roost_timber"}, Behavior: "wintering"},
				{Name: "spring_breeding", Start: MD(time.March, 11), End: MD(time.May, 15), Peak: peakOn(time.April, 15), BaseActivity: 0.85,
					HabitatFocus: []string{"strut_zones", "open_hardwoods", "field_edges"}, Behavior: "breeding"},
				{Name: "nesting", Start: MD(time.May, 16), End: MD(time.July, 15), BaseActivity: 0.4,
					HabitatFocus: []string{"grassy_fields", "brushy_edges"}, Behavior: "nesting"},
				{Name: "brood_rearing", Start: MD(time.July, 16), End: MD(time.September, 30), BaseActivity: 0.5,
					HabitatFocus: []string{"hayfields", "clearings"}, Behavior: "brood_rearing"},
				{Name: "fall_flock", Start: MD(time.October, 1), End: MD(time.November, 30), BaseActivity: 0.6,
					HabitatFocus: []string{"mast_hardwoods", "ag_fields"}, Behavior: "fall_flocking"},
			},
		},
	}
}

// BuiltInModel finds the compiled-in model for species and region.
func BuiltInModel(species, region string) (SeasonalModel, bool) {
	for _, m := range BuiltInModels() {
		if m.Species == species && m.Region == region {
			return m, true
		}
	}
	return SeasonalModel{}, false
}
