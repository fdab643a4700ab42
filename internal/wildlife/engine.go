package wildlife

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RuleRepository serves externally authored rules. An empty species or
// season means "any".
type RuleRepository interface {
	ListActiveRules(ctx context.Context, species, season string) ([]Rule, error)
	GetRule(ctx context.Context, id string) (Rule, error)
}

// ModelRepository serves externally authored seasonal models.
type ModelRepository interface {
	GetModel(ctx context.Context, species, region string) (SeasonalModel, error)
}

const (
	phaseHabitatPriority = 0.8
	maxRecommendations   = 5
	MaxForecastDays      = 14
)

type Location struct {
	Region    string   `json:"region,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type QueryRequest struct {
	Species     string      `json:"species"`
	Date        time.Time   `json:"date"`
	Location    *Location   `json:"location,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	Conditions  Observation `json:"conditions,omitempty"`
}

type Recommendation struct {
	Habitat  string  `json:"habitat"`
	Source   string  `json:"source"`
	Priority float64 `json:"priority"`
	Reason   string  `json:"reason"`
}

type PredictionResult struct {
	Species             string            `json:"species"`
	Region              string            `json:"region"`
	Date                string            `json:"date"`
	Phase               Phase             `json:"phase"`
	PhaseStart          string            `json:"phase_start"`
	PhaseEnd            string            `json:"phase_end"`
	Progress            float64           `json:"progress"`
	DaysRemaining       int               `json:"days_remaining"`
	PeakProximity       float64           `json:"peak_proximity"`
	BaseActivity        float64           `json:"base_activity"`
	TemperatureModifier float64           `json:"temperature_modifier"`
	ConditionModifier   float64           `json:"condition_modifier"`
	AdjustedActivity    float64           `json:"adjusted_activity"`
	RuleModifier        float64           `json:"rule_activity_modifier"`
	FinalActivity       float64           `json:"final_activity"`
	ActivityLevel       string            `json:"activity_level"`
	Confidence          float64           `json:"confidence"`
	ApplicableRules     []RuleApplication `json:"applicable_rules"`
	Recommendations     []Recommendation  `json:"recommendations"`
}

type Option func(*Engine)

func WithRuleRepository(repo RuleRepository) Option {
	return func(e *Engine) {
		e.rules = repo
		e.snapshots = nil
	}
}

func WithModelRepository(repo ModelRepository) Option {
	return func(e *Engine) {
		e.models = repo
		e.snapshots = nil
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSpecies replaces the species catalog used for id/alias lookup.
func WithSpecies(catalog []Species) Option {
	return func(e *Engine) { e.species = catalog }
}

// Engine answers prediction queries from the built-in tables overlaid with
// the optional repositories. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	rules     RuleRepository
	models    ModelRepository
	snapshots SnapshotRepository
	species   []Species
	logger    *zap.Logger
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		species: BuiltInSpecies(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Species() []Species {
	return append([]Species(nil), e.species...)
}

// snapshot is everything one query reads from the repositories. It is
// fetched once and never re-read while scoring.
type snapshot struct {
	species Species
	model   SeasonalModel
	rules   []Rule
}

// Query resolves the phase for the request date, applies the rules for that
// phase's behavior and ranks habitat recommendations.
func (e *Engine) Query(ctx context.Context, req QueryRequest) (PredictionResult, error) {
	snap, err := e.snapshot(ctx, req)
	if err != nil {
		return PredictionResult{}, err
	}
	result, err := evaluate(snap, req)
	if err != nil {
		e.logger.Warn("prediction failed",
			zap.String("species", snap.species.ID),
			zap.String("region", snap.model.Region),
			zap.Error(err))
		return PredictionResult{}, err
	}
	e.logger.Debug("prediction",
		zap.String("species", result.Species),
		zap.String("region", result.Region),
		zap.String("phase", result.Phase.Name),
		zap.Float64("final_activity", result.FinalActivity),
		zap.Int("rules", len(result.ApplicableRules)))
	return result, nil
}

// Forecast runs Query for days consecutive dates starting at req.Date, all
// against one repository snapshot.
func (e *Engine) Forecast(ctx context.Context, req QueryRequest, days int) ([]PredictionResult, error) {
	if days < 1 || days > MaxForecastDays {
		return nil, invalid("days", "must be within [1, %d], got %d", MaxForecastDays, days)
	}
	snap, err := e.snapshot(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]PredictionResult, 0, days)
	for i := 0; i < days; i++ {
		dayReq := req
		dayReq.Date = req.Date.AddDate(0, 0, i)
		result, err := evaluate(snap, dayReq)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

// Model returns the model a query for species/region would use.
func (e *Engine) Model(ctx context.Context, species, region string) (SeasonalModel, error) {
	view, err := e.view(ctx, species, region)
	if err != nil {
		return SeasonalModel{}, err
	}
	_, model, err := view.resolveModel(ctx, species, region)
	if err != nil {
		return SeasonalModel{}, err
	}
	return model, nil
}

// Rules lists the built-in and custom rules active for species and season.
func (e *Engine) Rules(ctx context.Context, species, season string) ([]Rule, error) {
	id := NormaliseID(species)
	if sp, ok := LookupSpecies(e.species, species); ok {
		id = sp.ID
	}
	view, err := e.view(ctx, id, "")
	if err != nil {
		return nil, err
	}
	rules, err := view.mergedRules(ctx, id)
	if err != nil {
		return nil, err
	}
	out := rules[:0]
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if id != "" && !containsFold(r.Species, id) {
			continue
		}
		if season != "" && !containsFold(r.Seasons, SeasonAll) && !containsFold(r.Seasons, season) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (e *Engine) snapshot(ctx context.Context, req QueryRequest) (snapshot, error) {
	region := ""
	if req.Location != nil {
		region = req.Location.Region
	}
	view, err := e.view(ctx, req.Species, region)
	if err != nil {
		return snapshot{}, err
	}
	sp, model, err := view.resolveModel(ctx, req.Species, region)
	if err != nil {
		return snapshot{}, err
	}
	rules, err := view.mergedRules(ctx, sp.ID)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{species: sp, model: model, rules: rules}, nil
}

func (e *Engine) resolveModel(ctx context.Context, rawSpecies, region string) (Species, SeasonalModel, error) {
	sp, ok := LookupSpecies(e.species, rawSpecies)
	if !ok {
		id := NormaliseID(rawSpecies)
		// Species outside the catalog can still be served by a custom model
		// when the caller names the region.
		if region != "" && id != "" {
			if model, err := e.lookupModel(ctx, id, NormaliseID(region)); err == nil {
				return Species{ID: id, CommonName: id, PrimaryRegion: model.Region}, model, nil
			} else if !errors.Is(err, ErrNotFound) {
				return Species{}, SeasonalModel{}, err
			}
		}
		nf := notFound("species", strings.TrimSpace(rawSpecies))
		nf.Suggestions = SuggestSpecies(e.species, rawSpecies, 3)
		return Species{}, SeasonalModel{}, nf
	}

	if region = NormaliseID(region); region != "" && region != sp.PrimaryRegion {
		model, err := e.lookupModel(ctx, sp.ID, region)
		if err == nil {
			return sp, model, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Species{}, SeasonalModel{}, err
		}
		e.logger.Info("no model for requested region, using primary region",
			zap.String("species", sp.ID),
			zap.String("region", region),
			zap.String("primary_region", sp.PrimaryRegion))
	}

	model, err := e.lookupModel(ctx, sp.ID, sp.PrimaryRegion)
	if err != nil {
		return Species{}, SeasonalModel{}, err
	}
	return sp, model, nil
}

func (e *Engine) lookupModel(ctx context.Context, species, region string) (SeasonalModel, error) {
	if e.models != nil {
		model, err := e.models.GetModel(ctx, species, region)
		if err == nil {
			return model, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return SeasonalModel{}, fmt.Errorf("fetch model %s/%s: %w", species, region, err)
		}
	}
	if model, ok := BuiltInModel(species, region); ok {
		return model, nil
	}
	return SeasonalModel{}, notFound("model", species+"/"+region)
}

// mergedRules returns built-in rules with active custom rules of the same id
// replacing them in place; new custom rules follow in repository order. With
// a snapshot store, a built-in whose id is stored at all (inactive, or scoped
// to other species) is dropped when no active override replaces it.
func (e *Engine) mergedRules(ctx context.Context, species string) ([]Rule, error) {
	builtins := BuiltInRules()
	if e.rules == nil {
		return builtins, nil
	}
	custom, err := e.rules.ListActiveRules(ctx, species, "")
	if err != nil {
		return nil, fmt.Errorf("list custom rules for %s: %w", species, err)
	}
	var masked map[string]bool
	if frozen, ok := e.rules.(*frozenRepository); ok {
		masked = frozen.masked
	}

	overrides := make(map[string]Rule, len(custom))
	for _, r := range custom {
		overrides[r.ID] = r
	}
	merged := make([]Rule, 0, len(builtins)+len(custom))
	placed := make(map[string]bool, len(custom))
	for _, r := range builtins {
		if o, ok := overrides[r.ID]; ok {
			merged = append(merged, o)
			placed[r.ID] = true
			continue
		}
		if masked[r.ID] {
			continue
		}
		merged = append(merged, r)
	}
	for _, r := range custom {
		if !placed[r.ID] {
			merged = append(merged, r)
		}
	}
	return merged, nil
}

func evaluate(snap snapshot, req QueryRequest) (PredictionResult, error) {
	day := civilDate(req.Date)
	observed := req.Conditions.Clone()
	if req.Temperature != nil {
		if _, ok := observed[FieldTemperature]; !ok {
			observed[FieldTemperature] = Num(*req.Temperature)
		}
	}

	progress, err := Progress(snap.model, day)
	if err != nil {
		return PredictionResult{}, err
	}
	outcome := ApplyRules(snap.rules, observed, snap.species.ID, progress.Phase.Behavior)
	prediction, err := Predict(snap.model, day, req.Temperature, observed)
	if err != nil {
		return PredictionResult{}, err
	}

	final := clampUnit(prediction.PredictedActivity + outcome.ActivityModifier)
	applicable := outcome.Applicable
	if applicable == nil {
		applicable = []RuleApplication{}
	}
	return PredictionResult{
		Species:             snap.species.ID,
		Region:              snap.model.Region,
		Date:                day.Format(time.DateOnly),
		Phase:               progress.Phase,
		PhaseStart:          progress.StartDate.Format(time.DateOnly),
		PhaseEnd:            progress.EndDate.Format(time.DateOnly),
		Progress:            progress.Progress,
		DaysRemaining:       progress.DaysRemaining,
		PeakProximity:       progress.PeakProximity,
		BaseActivity:        prediction.BaseActivity,
		TemperatureModifier: prediction.TemperatureModifier,
		ConditionModifier:   prediction.ConditionModifier,
		AdjustedActivity:    prediction.PredictedActivity,
		RuleModifier:        outcome.ActivityModifier,
		FinalActivity:       final,
		ActivityLevel:       ActivityLabel(final),
		Confidence:          prediction.Confidence,
		ApplicableRules:     applicable,
		Recommendations:     recommendHabitats(progress.Phase, outcome.LocationPreferences),
	}, nil
}

func recommendHabitats(phase Phase, prefs []HabitatPreference) []Recommendation {
	recs := make([]Recommendation, 0, len(phase.HabitatFocus)+len(prefs))
	seen := make(map[string]bool)
	for _, habitat := range phase.HabitatFocus {
		if seen[habitat] {
			continue
		}
		seen[habitat] = true
		recs = append(recs, Recommendation{
			Habitat:  habitat,
			Source:   "phase",
			Priority: phaseHabitatPriority,
			Reason:   "preferred during " + phase.Name,
		})
	}
	for _, pref := range prefs {
		for _, habitat := range pref.Habitats {
			if seen[habitat] {
				continue
			}
			seen[habitat] = true
			recs = append(recs, Recommendation{
				Habitat:  habitat,
				Source:   "rule:" + pref.RuleID,
				Priority: pref.Strength,
				Reason:   "favored by current conditions",
			})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
