package wildlife

import (
	"context"
	"fmt"
)

// SnapshotRepository serves everything one query reads from a single
// consistent view of the store, so a concurrent reload never mixes old
// models with new rules.
type SnapshotRepository interface {
	RuleRepository
	ModelRepository
	Snapshot(ctx context.Context, species string, regions []string) (RepositorySnapshot, error)
}

// RepositorySnapshot is one consistent read. Models holds the stored models
// found for the requested regions, keyed by region. Rules are the active
// stored rules for the species. CustomRuleIDs lists every stored rule id,
// active or not and for any species; each one masks the built-in rule with
// the same id.
type RepositorySnapshot struct {
	Models        map[string]SeasonalModel
	Rules         []Rule
	CustomRuleIDs []string
}

// WithStore reads rules and models through one snapshot per query.
func WithStore(repo SnapshotRepository) Option {
	return func(e *Engine) {
		e.rules = repo
		e.models = repo
		e.snapshots = repo
	}
}

// frozenRepository answers repository reads from one RepositorySnapshot.
type frozenRepository struct {
	species string
	snap    RepositorySnapshot
	masked  map[string]bool
}

func newFrozenRepository(species string, snap RepositorySnapshot) *frozenRepository {
	masked := make(map[string]bool, len(snap.CustomRuleIDs))
	for _, id := range snap.CustomRuleIDs {
		masked[id] = true
	}
	return &frozenRepository{species: species, snap: snap, masked: masked}
}

func (f *frozenRepository) ListActiveRules(_ context.Context, species, season string) ([]Rule, error) {
	out := make([]Rule, 0, len(f.snap.Rules))
	for _, r := range f.snap.Rules {
		if season != "" && !containsFold(r.Seasons, SeasonAll) && !containsFold(r.Seasons, season) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *frozenRepository) GetRule(_ context.Context, id string) (Rule, error) {
	for _, r := range f.snap.Rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, notFound("rule", id)
}

func (f *frozenRepository) GetModel(_ context.Context, species, region string) (SeasonalModel, error) {
	if NormaliseID(species) == f.species {
		if model, ok := f.snap.Models[NormaliseID(region)]; ok {
			return model, nil
		}
	}
	return SeasonalModel{}, notFound("model", species+"/"+region)
}

// view returns e, or with a snapshot store a copy of e that reads from one
// snapshot taken for rawSpecies in region and the species' primary region.
func (e *Engine) view(ctx context.Context, rawSpecies, region string) (*Engine, error) {
	if e.snapshots == nil {
		return e, nil
	}
	id := NormaliseID(rawSpecies)
	var regions []string
	if r := NormaliseID(region); r != "" {
		regions = append(regions, r)
	}
	if sp, ok := LookupSpecies(e.species, rawSpecies); ok {
		id = sp.ID
		if len(regions) == 0 || regions[0] != sp.PrimaryRegion {
			regions = append(regions, sp.PrimaryRegion)
		}
	}
	snap, err := e.snapshots.Snapshot(ctx, id, regions)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	frozen := newFrozenRepository(id, snap)
	return &Engine{rules: frozen, models: frozen, species: e.species, logger: e.logger}, nil
}
