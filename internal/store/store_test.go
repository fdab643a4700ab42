package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

func fogRule() wildlife.Rule {
	return wildlife.Rule{
		ID:          "moose_fog_bedding",
		Name:        "Fog bedding",
		Species:     []string{"Moose"},
		Seasons:     []string{"all"},
		Habitats:    []string{"spruce_bogs"},
		Conditions:  wildlife.Conditions{"humidity": wildlife.MinOnly{Min: 90}},
		Effect:      wildlife.EffectLocationPreference,
		EffectValue: 0.6,
		Confidence:  0.5,
		Active:      true,
	}
}

func yukonModel() wildlife.SeasonalModel {
	peak := wildlife.MD(time.September, 28)
	return wildlife.SeasonalModel{
		Species:  "moose",
		Region:   "Yukon",
		Accuracy: 0.7,
		Phases: []wildlife.Phase{
			{Name: "rut", Start: wildlife.MD(time.September, 10), End: wildlife.MD(time.October, 20), Peak: &peak, BaseActivity: 0.8, Behavior: "rut"},
			{Name: "rest", Start: wildlife.MD(time.October, 21), End: wildlife.MD(time.September, 9), BaseActivity: 0.3, Behavior: "wintering"},
		},
	}
}

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestRuleWriteContract(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		created, err := s.CreateRule(ctx, fogRule())
		require.NoError(t, err)
		assert.Equal(t, []string{"moose"}, created.Species)

		_, err = s.CreateRule(ctx, fogRule())
		assert.ErrorIs(t, err, ErrConflict)

		got, err := s.GetRule(ctx, "moose_fog_bedding")
		require.NoError(t, err)
		assert.Equal(t, "Fog bedding", got.Name)
		humidity, ok := got.Conditions["humidity"].(wildlife.MinOnly)
		require.True(t, ok, "conditions survive storage: %#v", got.Conditions)
		assert.Equal(t, 90.0, humidity.Min)

		updated := fogRule()
		updated.EffectValue = 0.9
		_, err = s.UpdateRule(ctx, updated)
		require.NoError(t, err)
		got, err = s.GetRule(ctx, "moose_fog_bedding")
		require.NoError(t, err)
		assert.Equal(t, 0.9, got.EffectValue)

		bad := fogRule()
		bad.EffectValue = 1.5
		_, err = s.UpdateRule(ctx, bad)
		assert.ErrorIs(t, err, wildlife.ErrValidation)

		missing := fogRule()
		missing.ID = "nope"
		_, err = s.UpdateRule(ctx, missing)
		assert.ErrorIs(t, err, wildlife.ErrNotFound)
	})
}

func TestCreateRuleGeneratesID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		rule := fogRule()
		rule.ID = ""
		created, err := s.CreateRule(context.Background(), rule)
		require.NoError(t, err)
		assert.Regexp(t, `^rule_[0-9a-f-]{36}$`, created.ID)
	})
}

func TestToggleAndWeight(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.CreateRule(ctx, fogRule())
		require.NoError(t, err)

		active, err := s.ListActiveRules(ctx, "moose", "rut")
		require.NoError(t, err)
		assert.Len(t, active, 1)

		_, err = s.ToggleActive(ctx, "moose_fog_bedding", false)
		require.NoError(t, err)
		active, err = s.ListActiveRules(ctx, "moose", "")
		require.NoError(t, err)
		assert.Empty(t, active)
		all, err := s.ListRules(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		rule, err := s.SetWeight(ctx, "moose_fog_bedding", 1.5)
		require.NoError(t, err)
		require.NotNil(t, rule.Weight)
		assert.Equal(t, 1.5, *rule.Weight)

		_, err = s.SetWeight(ctx, "moose_fog_bedding", 2.5)
		assert.ErrorIs(t, err, wildlife.ErrValidation)
		_, err = s.SetWeight(ctx, "moose_fog_bedding", -1.1)
		assert.ErrorIs(t, err, wildlife.ErrValidation)
		rule, err = s.GetRule(ctx, "moose_fog_bedding")
		require.NoError(t, err)
		assert.Equal(t, 1.5, rule.EffectiveWeight(), "rejected weight must not be stored")

		_, err = s.ToggleActive(ctx, "ghost", true)
		assert.ErrorIs(t, err, wildlife.ErrNotFound)
		_, err = s.SetWeight(ctx, "ghost", 1)
		assert.ErrorIs(t, err, wildlife.ErrNotFound)

		require.NoError(t, s.DeleteRule(ctx, "moose_fog_bedding"))
		assert.ErrorIs(t, s.DeleteRule(ctx, "moose_fog_bedding"), wildlife.ErrNotFound)
	})
}

func TestActiveRulesFilterBySpeciesAndSeason(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rut := fogRule()
		rut.ID = "elk_rut_only"
		rut.Species = []string{"elk"}
		rut.Seasons = []string{"rut"}
		_, err := s.CreateRule(ctx, rut)
		require.NoError(t, err)
		_, err = s.CreateRule(ctx, fogRule())
		require.NoError(t, err)

		elkRut, err := s.ListActiveRules(ctx, "elk", "rut")
		require.NoError(t, err)
		require.Len(t, elkRut, 1)
		assert.Equal(t, "elk_rut_only", elkRut[0].ID)

		elkWinter, err := s.ListActiveRules(ctx, "elk", "wintering")
		require.NoError(t, err)
		assert.Empty(t, elkWinter)

		everything, err := s.ListActiveRules(ctx, "", "")
		require.NoError(t, err)
		assert.Len(t, everything, 2)
	})
}

func TestModelWriteContract(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveModel(ctx, yukonModel()))

		got, err := s.GetModel(ctx, "moose", "yukon")
		require.NoError(t, err)
		assert.Equal(t, "yukon", got.Region)
		require.Len(t, got.Phases, 2)
		require.NotNil(t, got.Phases[0].Peak)
		assert.Equal(t, wildlife.MD(time.September, 28), *got.Phases[0].Peak)

		bad := yukonModel()
		bad.Phases[0].BaseActivity = 1.2
		assert.ErrorIs(t, s.SaveModel(ctx, bad), wildlife.ErrValidation)

		_, err = s.GetModel(ctx, "moose", "labrador")
		assert.ErrorIs(t, err, wildlife.ErrNotFound)

		models, err := s.ListModels(ctx)
		require.NoError(t, err)
		assert.Len(t, models, 1)

		require.NoError(t, s.DeleteModel(ctx, "moose", "yukon"))
		assert.ErrorIs(t, s.DeleteModel(ctx, "moose", "yukon"), wildlife.ErrNotFound)
	})
}

func TestStoreServesEngine(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveModel(ctx, yukonModel()))
		engine := wildlife.NewEngine(wildlife.WithStore(s))

		result, err := engine.Query(ctx, wildlife.QueryRequest{
			Species:  "moose",
			Date:     time.Date(2024, time.September, 28, 0, 0, 0, 0, time.UTC),
			Location: &wildlife.Location{Region: "yukon"},
		})
		require.NoError(t, err)
		assert.Equal(t, "yukon", result.Region)
		assert.Equal(t, "rut", result.Phase.Name)
		assert.Equal(t, 1.0, result.PeakProximity)
	})
}

func TestSnapshotReadsModelsAndRules(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SaveModel(ctx, yukonModel()))
		_, err := s.CreateRule(ctx, fogRule())
		require.NoError(t, err)
		off := fogRule()
		off.ID = "moose_heat_avoidance"
		off.Active = false
		_, err = s.CreateRule(ctx, off)
		require.NoError(t, err)
		elk := fogRule()
		elk.ID = "elk_fog"
		elk.Species = []string{"elk"}
		_, err = s.CreateRule(ctx, elk)
		require.NoError(t, err)

		snap, err := s.Snapshot(ctx, "moose", []string{"yukon", "northeast"})
		require.NoError(t, err)
		require.Len(t, snap.Models, 1)
		assert.Equal(t, 0.7, snap.Models["yukon"].Accuracy)
		require.Len(t, snap.Rules, 1)
		assert.Equal(t, "moose_fog_bedding", snap.Rules[0].ID)
		assert.ElementsMatch(t, []string{"moose_fog_bedding", "moose_heat_avoidance", "elk_fog"}, snap.CustomRuleIDs)

		none, err := s.Snapshot(ctx, "elk", nil)
		require.NoError(t, err)
		assert.Empty(t, none.Models)
		require.Len(t, none.Rules, 1)
		assert.Equal(t, "elk_fog", none.Rules[0].ID)
	})
}

func TestMemorySnapshotNeverMixesReloads(t *testing.T) {
	s := NewMemoryStore()
	generation := func(id string, accuracy float64) ([]wildlife.Rule, []wildlife.SeasonalModel) {
		rule := fogRule()
		rule.ID = id
		model := yukonModel()
		model.Accuracy = accuracy
		return []wildlife.Rule{rule}, []wildlife.SeasonalModel{model}
	}
	rulesA, modelsA := generation("gen_a", 0.7)
	rulesB, modelsB := generation("gen_b", 0.6)
	require.NoError(t, s.Replace(rulesA, modelsA))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				_ = s.Replace(rulesB, modelsB)
			} else {
				_ = s.Replace(rulesA, modelsA)
			}
		}
	}()

	want := map[string]float64{"gen_a": 0.7, "gen_b": 0.6}
	for i := 0; i < 500; i++ {
		snap, err := s.Snapshot(context.Background(), "moose", []string{"yukon"})
		require.NoError(t, err)
		require.Len(t, snap.Rules, 1)
		require.Equal(t, want[snap.Rules[0].ID], snap.Models["yukon"].Accuracy, "snapshot %d mixed generations", i)
	}
	close(stop)
	wg.Wait()
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "")
	require.Error(t, err)

	s, err := Open("memory", "")
	require.NoError(t, err)
	_, isMemory := s.(*MemoryStore)
	assert.True(t, isMemory)
	assert.NoError(t, s.Close())
}
