package wildlife

import (
	"math"
	"time"
)

const (
	peakWindowDays    = 10.0
	peakAmplification = 0.2
)

// ResolvePhase returns the first phase, in list order, whose interval contains date.
func ResolvePhase(model SeasonalModel, date time.Time) (Phase, error) {
	md := MonthDayOf(date)
	for _, phase := range model.Phases {
		if phase.Interval().Contains(md) {
			return phase, nil
		}
	}
	return Phase{}, &PhaseCoverageGapError{Species: model.Species, Region: model.Region, Date: civilDate(date)}
}

type PhaseProgress struct {
	Phase         Phase     `json:"phase"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Progress      float64   `json:"progress"`
	DaysRemaining int       `json:"days_remaining"`
	PeakProximity float64   `json:"peak_proximity"`
	ActivityLevel float64   `json:"activity_level"`
}

// Progress resolves the active phase and measures how far date is into it.
// Within peakWindowDays of a declared peak the phase activity is amplified by
// up to peakAmplification.
func Progress(model SeasonalModel, date time.Time) (PhaseProgress, error) {
	phase, err := ResolvePhase(model, date)
	if err != nil {
		return PhaseProgress{}, err
	}
	day := civilDate(date)
	interval := phase.Interval()
	start, end := interval.Dates(day)

	total := daysBetween(start, end)
	if total < 1 {
		total = 1
	}
	elapsed := daysBetween(start, day)
	remaining := daysBetween(day, end)
	if remaining < 0 {
		remaining = 0
	}

	proximity := 0.0
	if phase.Peak != nil {
		peak := interval.DateOf(*phase.Peak, start)
		distance := math.Abs(float64(daysBetween(day, peak)))
		proximity = math.Max(0, 1-distance/peakWindowDays)
	}

	return PhaseProgress{
		Phase:         phase,
		StartDate:     start,
		EndDate:       end,
		Progress:      clampUnit(float64(elapsed) / float64(total)),
		DaysRemaining: remaining,
		PeakProximity: proximity,
		ActivityLevel: phase.BaseActivity * (1 + proximity*peakAmplification),
	}, nil
}
