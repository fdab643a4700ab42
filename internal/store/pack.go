package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

// Pack is a YAML bundle of custom rules and seasonal models:
//
//	rules:
//	  - id: moose_fog_bedding
//	    species: [moose]
//	    seasons: [all]
//	    conditions:
//	      humidity: {min: 90}
//	    effect_type: location_preference
//	    ...
//	models:
//	  - species: moose
//	    region: yukon
//	    phases: [...]
type Pack struct {
	Rules  []wildlife.Rule          `yaml:"rules"`
	Models []wildlife.SeasonalModel `yaml:"models"`
}

func LoadPack(path string) (Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pack{}, fmt.Errorf("open pack: %w", err)
	}
	defer f.Close()
	pack, err := DecodePack(f)
	if err != nil {
		return Pack{}, fmt.Errorf("pack %s: %w", path, err)
	}
	return pack, nil
}

// DecodePack reads a pack and validates every entry. Unknown keys are errors.
func DecodePack(r io.Reader) (Pack, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var pack Pack
	if err := dec.Decode(&pack); err != nil && !errors.Is(err, io.EOF) {
		return Pack{}, err
	}
	for i, rule := range pack.Rules {
		if err := rule.Validate(); err != nil {
			return Pack{}, fmt.Errorf("rules[%d] %s: %w", i, rule.ID, err)
		}
	}
	for i, model := range pack.Models {
		if err := model.Validate(); err != nil {
			return Pack{}, fmt.Errorf("models[%d] %s/%s: %w", i, model.Species, model.Region, err)
		}
	}
	return pack, nil
}

func EncodePack(w io.Writer, pack Pack) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(pack); err != nil {
		return err
	}
	return enc.Close()
}

// Merge appends other onto p. Later rules and models replace earlier ones
// with the same id or species/region.
func (p Pack) Merge(other Pack) Pack {
	out := Pack{
		Rules:  append([]wildlife.Rule(nil), p.Rules...),
		Models: append([]wildlife.SeasonalModel(nil), p.Models...),
	}
	for _, r := range other.Rules {
		replaced := false
		for i := range out.Rules {
			if out.Rules[i].ID == r.ID {
				out.Rules[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			out.Rules = append(out.Rules, r)
		}
	}
	for _, m := range other.Models {
		replaced := false
		for i := range out.Models {
			if modelKey(out.Models[i].Species, out.Models[i].Region) == modelKey(m.Species, m.Region) {
				out.Models[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			out.Models = append(out.Models, m)
		}
	}
	return out
}

// LoadPacks reads and merges the packs in order.
func LoadPacks(paths []string) (Pack, error) {
	var merged Pack
	for _, path := range paths {
		pack, err := LoadPack(path)
		if err != nil {
			return Pack{}, err
		}
		merged = merged.Merge(pack)
	}
	return merged, nil
}

type ApplyResult struct {
	RulesCreated int
	RulesUpdated int
	ModelsSaved  int
}

// ApplyPack writes a pack through the write contract: existing rule ids are
// updated, new ones created.
func ApplyPack(ctx context.Context, store Store, pack Pack) (ApplyResult, error) {
	var res ApplyResult
	for _, rule := range pack.Rules {
		_, err := store.GetRule(ctx, rule.ID)
		switch {
		case err == nil:
			if _, err := store.UpdateRule(ctx, rule); err != nil {
				return res, fmt.Errorf("update rule %s: %w", rule.ID, err)
			}
			res.RulesUpdated++
		case errors.Is(err, wildlife.ErrNotFound):
			if _, err := store.CreateRule(ctx, rule); err != nil {
				return res, fmt.Errorf("create rule %s: %w", rule.ID, err)
			}
			res.RulesCreated++
		default:
			return res, err
		}
	}
	for _, model := range pack.Models {
		if err := store.SaveModel(ctx, model); err != nil {
			return res, fmt.Errorf("save model %s/%s: %w", model.Species, model.Region, err)
		}
		res.ModelsSaved++
	}
	return res, nil
}

// ExportPack dumps the store content as a pack.
func ExportPack(ctx context.Context, store Store) (Pack, error) {
	rules, err := store.ListRules(ctx)
	if err != nil {
		return Pack{}, err
	}
	models, err := store.ListModels(ctx)
	if err != nil {
		return Pack{}, err
	}
	return Pack{Rules: rules, Models: models}, nil
}
