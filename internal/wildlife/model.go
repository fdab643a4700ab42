package wildlife

import (
	"math"
	"strings"
)

// DefaultModelAccuracy is the confidence reported for models that declare none.
const DefaultModelAccuracy = 0.75

type Phase struct {
	Name         string    `json:"name" yaml:"name"`
	Start        MonthDay  `json:"start" yaml:"start"`
	End          MonthDay  `json:"end" yaml:"end"`
	Peak         *MonthDay `json:"peak,omitempty" yaml:"peak,omitempty"`
	BaseActivity float64   `json:"base_activity" yaml:"base_activity"`
	HabitatFocus []string  `json:"habitat_focus" yaml:"habitat_focus"`
	Behavior     string    `json:"behavior" yaml:"behavior"`
}

func (p Phase) Interval() CalendarInterval {
	return NewInterval(p.Start, p.End)
}

// IsRut reports whether the phase is tagged as a rut phase by name or behavior.
func (p Phase) IsRut() bool {
	return strings.Contains(strings.ToLower(p.Name), "rut") || strings.Contains(strings.ToLower(p.Behavior), "rut")
}

// TemperatureProfile carries the species thermal response. Heat avoidance is
// off when HeatSensitivity is zero; the rut bonus is off when the favorable
// range is empty.
type TemperatureProfile struct {
	HeatThresholdC   float64 `json:"heat_threshold_c" yaml:"heat_threshold_c"`
	HeatSensitivity  float64 `json:"heat_sensitivity" yaml:"heat_sensitivity"`
	RutFavorableMinC float64 `json:"rut_favorable_min_c" yaml:"rut_favorable_min_c"`
	RutFavorableMaxC float64 `json:"rut_favorable_max_c" yaml:"rut_favorable_max_c"`
	RutBonus         float64 `json:"rut_bonus,omitempty" yaml:"rut_bonus,omitempty"`
}

func (t TemperatureProfile) validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"heat_threshold_c", t.HeatThresholdC},
		{"heat_sensitivity", t.HeatSensitivity},
		{"rut_favorable_min_c", t.RutFavorableMinC},
		{"rut_favorable_max_c", t.RutFavorableMaxC},
		{"rut_bonus", t.RutBonus},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalid("temperature."+f.name, "must be a finite number, got %g", f.value)
		}
	}
	if t.HeatSensitivity < 0 {
		return invalid("temperature.heat_sensitivity", "must not be negative, got %g", t.HeatSensitivity)
	}
	return nil
}

type SeasonalModel struct {
	Species     string             `json:"species" yaml:"species"`
	Region      string             `json:"region" yaml:"region"`
	Phases      []Phase            `json:"phases" yaml:"phases"`
	Accuracy    float64            `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	Temperature TemperatureProfile `json:"temperature" yaml:"temperature"`
}

func (m SeasonalModel) Confidence() float64 {
	if m.Accuracy <= 0 {
		return DefaultModelAccuracy
	}
	return m.Accuracy
}

// Validate checks each phase on its own. Full-year coverage is not checked;
// gaps surface as PhaseCoverageGapError at query time.
func (m SeasonalModel) Validate() error {
	if strings.TrimSpace(m.Species) == "" {
		return invalid("species", "must not be empty")
	}
	if strings.TrimSpace(m.Region) == "" {
		return invalid("region", "must not be empty")
	}
	if len(m.Phases) == 0 {
		return invalid("phases", "model %s/%s has no phases", m.Species, m.Region)
	}
	if math.IsNaN(m.Accuracy) || m.Accuracy < 0 || m.Accuracy > 1 {
		return invalid("accuracy", "must be within [0, 1], got %g", m.Accuracy)
	}
	if err := m.Temperature.validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(m.Phases))
	for i, p := range m.Phases {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return invalid("phases", "phase %d has no name", i)
		}
		if seen[name] {
			return invalid("phases", "phase %s is repeated", name)
		}
		seen[name] = true
		if !p.Start.Valid() || !p.End.Valid() {
			return invalid("phases."+name, "start %s / end %s is not a calendar date", p.Start, p.End)
		}
		if p.Interval().Reversed() {
			return invalid("phases."+name, "start %s is after end %s in the same month", p.Start, p.End)
		}
		if math.IsNaN(p.BaseActivity) || p.BaseActivity < 0 || p.BaseActivity > 1 {
			return invalid("phases."+name+".base_activity", "must be within [0, 1], got %g", p.BaseActivity)
		}
		if p.Peak != nil {
			if !p.Peak.Valid() {
				return invalid("phases."+name+".peak", "%s is not a calendar date", p.Peak)
			}
			if !p.Interval().Contains(*p.Peak) {
				return invalid("phases."+name+".peak", "%s falls outside %s..%s", p.Peak, p.Start, p.End)
			}
		}
	}
	return nil
}

func (m SeasonalModel) Clone() SeasonalModel {
	out := m
	out.Phases = make([]Phase, len(m.Phases))
	for i, p := range m.Phases {
		p.HabitatFocus = append([]string(nil), p.HabitatFocus...)
		if p.Peak != nil {
			peak := *p.Peak
			p.Peak = &peak
		}
		out.Phases[i] = p
	}
	return out
}
