// Package store holds externally authored rules and seasonal models behind the
// repository interfaces the prediction engine reads from.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

// ErrConflict is returned when a rule id is created twice.
var ErrConflict = errors.New("already exists")

// Writer is the admin write contract. Every mutation keeps the bounds a rule
// or model is validated against; out-of-range values are rejected.
type Writer interface {
	CreateRule(ctx context.Context, rule wildlife.Rule) (wildlife.Rule, error)
	UpdateRule(ctx context.Context, rule wildlife.Rule) (wildlife.Rule, error)
	ToggleActive(ctx context.Context, id string, active bool) (wildlife.Rule, error)
	SetWeight(ctx context.Context, id string, weight float64) (wildlife.Rule, error)
	DeleteRule(ctx context.Context, id string) error
	SaveModel(ctx context.Context, model wildlife.SeasonalModel) error
	DeleteModel(ctx context.Context, species, region string) error
}

// Store is a readable and writable rule/model repository.
type Store interface {
	wildlife.SnapshotRepository
	Writer
	ListRules(ctx context.Context) ([]wildlife.Rule, error)
	ListModels(ctx context.Context) ([]wildlife.SeasonalModel, error)
	Close() error
}

// Open returns the store for a configured driver.
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// prepareRule normalises ids and fills a generated id for new rules.
func prepareRule(rule wildlife.Rule, generate bool) (wildlife.Rule, error) {
	rule = rule.Clone()
	rule.ID = strings.TrimSpace(rule.ID)
	if rule.ID == "" && generate {
		rule.ID = "rule_" + uuid.NewString()
	}
	for i, sp := range rule.Species {
		rule.Species[i] = wildlife.NormaliseID(sp)
	}
	if err := rule.Validate(); err != nil {
		return wildlife.Rule{}, err
	}
	return rule, nil
}

func prepareModel(model wildlife.SeasonalModel) (wildlife.SeasonalModel, error) {
	model = model.Clone()
	model.Species = wildlife.NormaliseID(model.Species)
	model.Region = wildlife.NormaliseID(model.Region)
	if err := model.Validate(); err != nil {
		return wildlife.SeasonalModel{}, err
	}
	return model, nil
}

func modelKey(species, region string) string {
	return wildlife.NormaliseID(species) + "/" + wildlife.NormaliseID(region)
}

func ruleNotFound(id string) error {
	return &wildlife.NotFoundError{Kind: "rule", ID: id}
}

func modelNotFound(species, region string) error {
	return &wildlife.NotFoundError{Kind: "model", ID: modelKey(species, region)}
}

func matchesFilter(rule wildlife.Rule, species, season string) bool {
	if !rule.Active {
		return false
	}
	if species != "" && !containsFold(rule.Species, species) {
		return false
	}
	if season != "" && !containsFold(rule.Seasons, wildlife.SeasonAll) && !containsFold(rule.Seasons, season) {
		return false
	}
	return true
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
