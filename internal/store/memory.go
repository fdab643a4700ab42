package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

// MemoryStore keeps rules and models in process. Reads hand out copies so a
// query's snapshot never changes under it.
type MemoryStore struct {
	mu     sync.RWMutex
	rules  map[string]wildlife.Rule
	order  []string
	models map[string]wildlife.SeasonalModel
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules:  make(map[string]wildlife.Rule),
		models: make(map[string]wildlife.SeasonalModel),
	}
}

func (s *MemoryStore) ListActiveRules(_ context.Context, species, season string) ([]wildlife.Rule, error) {
	species = wildlife.NormaliseID(species)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wildlife.Rule, 0, len(s.order))
	for _, id := range s.order {
		rule := s.rules[id]
		if matchesFilter(rule, species, season) {
			out = append(out, rule.Clone())
		}
	}
	return out, nil
}

// Snapshot reads the models for species in regions and its active rules
// under one read lock, so a concurrent Replace is seen entirely or not at all.
func (s *MemoryStore) Snapshot(_ context.Context, species string, regions []string) (wildlife.RepositorySnapshot, error) {
	species = wildlife.NormaliseID(species)
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := wildlife.RepositorySnapshot{
		Models:        make(map[string]wildlife.SeasonalModel, len(regions)),
		Rules:         make([]wildlife.Rule, 0, len(s.order)),
		CustomRuleIDs: append([]string(nil), s.order...),
	}
	for _, region := range regions {
		if model, ok := s.models[modelKey(species, region)]; ok {
			snap.Models[wildlife.NormaliseID(region)] = model.Clone()
		}
	}
	for _, id := range s.order {
		if rule := s.rules[id]; matchesFilter(rule, species, "") {
			snap.Rules = append(snap.Rules, rule.Clone())
		}
	}
	return snap, nil
}

func (s *MemoryStore) ListRules(_ context.Context) ([]wildlife.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wildlife.Rule, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rules[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetRule(_ context.Context, id string) (wildlife.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[id]
	if !ok {
		return wildlife.Rule{}, ruleNotFound(id)
	}
	return rule.Clone(), nil
}

func (s *MemoryStore) GetModel(_ context.Context, species, region string) (wildlife.SeasonalModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[modelKey(species, region)]
	if !ok {
		return wildlife.SeasonalModel{}, modelNotFound(species, region)
	}
	return model.Clone(), nil
}

func (s *MemoryStore) ListModels(_ context.Context) ([]wildlife.SeasonalModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.models))
	for k := range s.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]wildlife.SeasonalModel, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.models[k].Clone())
	}
	return out, nil
}

func (s *MemoryStore) CreateRule(_ context.Context, rule wildlife.Rule) (wildlife.Rule, error) {
	rule, err := prepareRule(rule, true)
	if err != nil {
		return wildlife.Rule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[rule.ID]; exists {
		return wildlife.Rule{}, fmt.Errorf("rule %s: %w", rule.ID, ErrConflict)
	}
	s.rules[rule.ID] = rule
	s.order = append(s.order, rule.ID)
	return rule.Clone(), nil
}

func (s *MemoryStore) UpdateRule(_ context.Context, rule wildlife.Rule) (wildlife.Rule, error) {
	rule, err := prepareRule(rule, false)
	if err != nil {
		return wildlife.Rule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[rule.ID]; !exists {
		return wildlife.Rule{}, ruleNotFound(rule.ID)
	}
	s.rules[rule.ID] = rule
	return rule.Clone(), nil
}

func (s *MemoryStore) ToggleActive(_ context.Context, id string, active bool) (wildlife.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[id]
	if !ok {
		return wildlife.Rule{}, ruleNotFound(id)
	}
	rule.Active = active
	s.rules[id] = rule
	return rule.Clone(), nil
}

func (s *MemoryStore) SetWeight(_ context.Context, id string, weight float64) (wildlife.Rule, error) {
	if err := wildlife.ValidateWeight(weight); err != nil {
		return wildlife.Rule{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[id]
	if !ok {
		return wildlife.Rule{}, ruleNotFound(id)
	}
	rule.Weight = &weight
	s.rules[id] = rule
	return rule.Clone(), nil
}

func (s *MemoryStore) DeleteRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return ruleNotFound(id)
	}
	delete(s.rules, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) SaveModel(_ context.Context, model wildlife.SeasonalModel) error {
	model, err := prepareModel(model)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[modelKey(model.Species, model.Region)] = model
	return nil
}

func (s *MemoryStore) DeleteModel(_ context.Context, species, region string) error {
	key := modelKey(species, region)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[key]; !ok {
		return modelNotFound(species, region)
	}
	delete(s.models, key)
	return nil
}

// Replace swaps the whole content in one step. Every rule and model is
// validated first; on error nothing changes.
func (s *MemoryStore) Replace(rules []wildlife.Rule, models []wildlife.SeasonalModel) error {
	nextRules := make(map[string]wildlife.Rule, len(rules))
	order := make([]string, 0, len(rules))
	for _, r := range rules {
		prepared, err := prepareRule(r, false)
		if err != nil {
			return err
		}
		if _, dup := nextRules[prepared.ID]; !dup {
			order = append(order, prepared.ID)
		}
		nextRules[prepared.ID] = prepared
	}
	nextModels := make(map[string]wildlife.SeasonalModel, len(models))
	for _, m := range models {
		prepared, err := prepareModel(m)
		if err != nil {
			return err
		}
		nextModels[modelKey(prepared.Species, prepared.Region)] = prepared
	}

	s.mu.Lock()
	s.rules, s.order, s.models = nextRules, order, nextModels
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
