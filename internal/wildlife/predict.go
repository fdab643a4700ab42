package wildlife

import (
	"strings"
	"time"
)

// Observation fields the predictor reads directly.
const (
	FieldTemperature   = "temperature"
	FieldWindSpeed     = "wind_speed"
	FieldPrecipitation = "precipitation"
	FieldPressureTrend = "pressure_trend"
)

const (
	windPenaltyAboveMPH    = 15.0
	windPenalty            = 0.1
	precipPenaltyAboveInHr = 0.25
	precipPenalty          = 0.15
	fallingPressureBonus   = 0.1
	defaultRutBonus        = 0.1
)

type ActivityPrediction struct {
	PhaseName           string  `json:"phase_name"`
	BaseActivity        float64 `json:"base_activity"`
	TemperatureModifier float64 `json:"temperature_modifier"`
	ConditionModifier   float64 `json:"condition_modifier"`
	PredictedActivity   float64 `json:"predicted_activity"`
	PeakProximity       float64 `json:"peak_proximity"`
	Confidence          float64 `json:"confidence"`
}

// Predict combines the phase activity with temperature and weather adjustments.
// temperature may be nil; conditions[temperature] is used in that case.
func Predict(model SeasonalModel, date time.Time, temperature *float64, conditions Observation) (ActivityPrediction, error) {
	progress, err := Progress(model, date)
	if err != nil {
		return ActivityPrediction{}, err
	}

	if temperature == nil {
		if t, ok := conditions.Number(FieldTemperature); ok {
			temperature = &t
		}
	}

	tempMod := 0.0
	if temperature != nil {
		tempMod = temperatureModifier(model.Temperature, progress.Phase, *temperature)
	}
	condMod := conditionModifier(conditions)

	return ActivityPrediction{
		PhaseName:           progress.Phase.Name,
		BaseActivity:        progress.ActivityLevel,
		TemperatureModifier: tempMod,
		ConditionModifier:   condMod,
		PredictedActivity:   clampUnit(progress.ActivityLevel + tempMod + condMod),
		PeakProximity:       progress.PeakProximity,
		Confidence:          model.Confidence(),
	}, nil
}

func temperatureModifier(profile TemperatureProfile, phase Phase, tempC float64) float64 {
	mod := 0.0
	if profile.HeatSensitivity > 0 && tempC > profile.HeatThresholdC {
		mod -= (tempC - profile.HeatThresholdC) * profile.HeatSensitivity
	}
	if phase.IsRut() && profile.RutFavorableMaxC > profile.RutFavorableMinC &&
		tempC >= profile.RutFavorableMinC && tempC <= profile.RutFavorableMaxC {
		bonus := profile.RutBonus
		if bonus == 0 {
			bonus = defaultRutBonus
		}
		mod += bonus
	}
	return mod
}

func conditionModifier(conditions Observation) float64 {
	mod := 0.0
	if wind, ok := conditions.Number(FieldWindSpeed); ok && wind > windPenaltyAboveMPH {
		mod -= windPenalty
	}
	if precip, ok := conditions.Number(FieldPrecipitation); ok && precip > precipPenaltyAboveInHr {
		mod -= precipPenalty
	}
	if trend, ok := conditions.Text(FieldPressureTrend); ok && strings.EqualFold(strings.TrimSpace(trend), "falling") {
		mod += fallingPressureBonus
	}
	return mod
}

// ActivityLabel buckets an activity score for display.
func ActivityLabel(activity float64) string {
	switch {
	case activity < 0.2:
		return "very_low"
	case activity < 0.4:
		return "low"
	case activity < 0.6:
		return "moderate"
	case activity < 0.8:
		return "high"
	default:
		return "very_high"
	}
}
