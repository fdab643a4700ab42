package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

type ruleRecord struct {
	ID          string              `gorm:"primaryKey;type:varchar(128)"`
	Name        string              `gorm:"type:varchar(255)"`
	Description string              `gorm:"type:text"`
	Species     []string            `gorm:"serializer:json"`
	Seasons     []string            `gorm:"serializer:json"`
	Habitats    []string            `gorm:"serializer:json"`
	Conditions  wildlife.Conditions `gorm:"serializer:json"`
	Effect      string              `gorm:"type:varchar(32);not null"`
	EffectValue float64
	Confidence  float64
	Weight      *float64
	Sources     []string `gorm:"serializer:json"`
	Active      bool     `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ruleRecord) TableName() string { return "rules" }

type modelRecord struct {
	ModelKey    string                      `gorm:"primaryKey;type:varchar(255)"`
	Species     string                      `gorm:"type:varchar(100);index"`
	Region      string                      `gorm:"type:varchar(100)"`
	Phases      []wildlife.Phase            `gorm:"serializer:json"`
	Accuracy    float64
	Temperature wildlife.TemperatureProfile `gorm:"serializer:json"`
	UpdatedAt   time.Time
}

func (modelRecord) TableName() string { return "seasonal_models" }

func toRuleRecord(r wildlife.Rule) ruleRecord {
	return ruleRecord{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Species:     r.Species,
		Seasons:     r.Seasons,
		Habitats:    r.Habitats,
		Conditions:  r.Conditions,
		Effect:      string(r.Effect),
		EffectValue: r.EffectValue,
		Confidence:  r.Confidence,
		Weight:      r.Weight,
		Sources:     r.Sources,
		Active:      r.Active,
	}
}

func (rec ruleRecord) rule() wildlife.Rule {
	return wildlife.Rule{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Species:     rec.Species,
		Seasons:     rec.Seasons,
		Habitats:    rec.Habitats,
		Conditions:  rec.Conditions,
		Effect:      wildlife.EffectKind(rec.Effect),
		EffectValue: rec.EffectValue,
		Confidence:  rec.Confidence,
		Weight:      rec.Weight,
		Sources:     rec.Sources,
		Active:      rec.Active,
	}
}

func (rec modelRecord) model() wildlife.SeasonalModel {
	return wildlife.SeasonalModel{
		Species:     rec.Species,
		Region:      rec.Region,
		Phases:      rec.Phases,
		Accuracy:    rec.Accuracy,
		Temperature: rec.Temperature,
	}
}

// SQLStore persists custom rules and models through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) a sqlite database. ":memory:" gives a
// private in-process database.
func OpenSQLite(dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Every pooled connection would otherwise see its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}
	return NewSQLStore(db)
}

func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&ruleRecord{}, &modelRecord{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) ListActiveRules(ctx context.Context, species, season string) ([]wildlife.Rule, error) {
	var recs []ruleRecord
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	species = wildlife.NormaliseID(species)
	out := make([]wildlife.Rule, 0, len(recs))
	for _, rec := range recs {
		rule := rec.rule()
		if matchesFilter(rule, species, season) {
			out = append(out, rule)
		}
	}
	return out, nil
}

// Snapshot reads the models for species in regions and every rule inside
// one transaction.
func (s *SQLStore) Snapshot(ctx context.Context, species string, regions []string) (wildlife.RepositorySnapshot, error) {
	species = wildlife.NormaliseID(species)
	snap := wildlife.RepositorySnapshot{Models: make(map[string]wildlife.SeasonalModel, len(regions))}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keys := make([]string, 0, len(regions))
		for _, region := range regions {
			keys = append(keys, modelKey(species, region))
		}
		if len(keys) > 0 {
			var models []modelRecord
			if err := tx.Where("model_key IN ?", keys).Find(&models).Error; err != nil {
				return fmt.Errorf("snapshot models: %w", err)
			}
			for _, rec := range models {
				model := rec.model()
				snap.Models[wildlife.NormaliseID(model.Region)] = model
			}
		}

		var rules []ruleRecord
		if err := tx.Order("created_at, id").Find(&rules).Error; err != nil {
			return fmt.Errorf("snapshot rules: %w", err)
		}
		for _, rec := range rules {
			rule := rec.rule()
			snap.CustomRuleIDs = append(snap.CustomRuleIDs, rule.ID)
			if matchesFilter(rule, species, "") {
				snap.Rules = append(snap.Rules, rule)
			}
		}
		return nil
	})
	if err != nil {
		return wildlife.RepositorySnapshot{}, err
	}
	return snap, nil
}

func (s *SQLStore) ListRules(ctx context.Context) ([]wildlife.Rule, error) {
	var recs []ruleRecord
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	out := make([]wildlife.Rule, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.rule())
	}
	return out, nil
}

func (s *SQLStore) GetRule(ctx context.Context, id string) (wildlife.Rule, error) {
	var rec ruleRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wildlife.Rule{}, ruleNotFound(id)
	}
	if err != nil {
		return wildlife.Rule{}, fmt.Errorf("get rule %s: %w", id, err)
	}
	return rec.rule(), nil
}

func (s *SQLStore) GetModel(ctx context.Context, species, region string) (wildlife.SeasonalModel, error) {
	var rec modelRecord
	err := s.db.WithContext(ctx).Where("model_key = ?", modelKey(species, region)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wildlife.SeasonalModel{}, modelNotFound(species, region)
	}
	if err != nil {
		return wildlife.SeasonalModel{}, fmt.Errorf("get model %s: %w", modelKey(species, region), err)
	}
	return rec.model(), nil
}

func (s *SQLStore) ListModels(ctx context.Context) ([]wildlife.SeasonalModel, error) {
	var recs []modelRecord
	if err := s.db.WithContext(ctx).Order("model_key").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	out := make([]wildlife.SeasonalModel, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.model())
	}
	return out, nil
}

func (s *SQLStore) CreateRule(ctx context.Context, rule wildlife.Rule) (wildlife.Rule, error) {
	rule, err := prepareRule(rule, true)
	if err != nil {
		return wildlife.Rule{}, err
	}
	rec := toRuleRecord(rule)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ruleRecord{}).Where("id = ?", rule.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("rule %s: %w", rule.ID, ErrConflict)
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return wildlife.Rule{}, err
		}
		return wildlife.Rule{}, fmt.Errorf("create rule %s: %w", rule.ID, err)
	}
	return rec.rule(), nil
}

func (s *SQLStore) UpdateRule(ctx context.Context, rule wildlife.Rule) (wildlife.Rule, error) {
	rule, err := prepareRule(rule, false)
	if err != nil {
		return wildlife.Rule{}, err
	}
	rec := toRuleRecord(rule)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ruleRecord
		if err := tx.Where("id = ?", rule.ID).First(&existing).Error; err != nil {
			return err
		}
		rec.CreatedAt = existing.CreatedAt
		return tx.Save(&rec).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wildlife.Rule{}, ruleNotFound(rule.ID)
	}
	if err != nil {
		return wildlife.Rule{}, fmt.Errorf("update rule %s: %w", rule.ID, err)
	}
	return rec.rule(), nil
}

func (s *SQLStore) ToggleActive(ctx context.Context, id string, active bool) (wildlife.Rule, error) {
	return s.updateColumn(ctx, id, "active", active)
}

func (s *SQLStore) SetWeight(ctx context.Context, id string, weight float64) (wildlife.Rule, error) {
	if err := wildlife.ValidateWeight(weight); err != nil {
		return wildlife.Rule{}, err
	}
	return s.updateColumn(ctx, id, "weight", weight)
}

func (s *SQLStore) updateColumn(ctx context.Context, id, column string, value any) (wildlife.Rule, error) {
	res := s.db.WithContext(ctx).Model(&ruleRecord{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return wildlife.Rule{}, fmt.Errorf("update rule %s %s: %w", id, column, res.Error)
	}
	if res.RowsAffected == 0 {
		return wildlife.Rule{}, ruleNotFound(id)
	}
	return s.GetRule(ctx, id)
}

func (s *SQLStore) DeleteRule(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&ruleRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete rule %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ruleNotFound(id)
	}
	return nil
}

func (s *SQLStore) SaveModel(ctx context.Context, model wildlife.SeasonalModel) error {
	model, err := prepareModel(model)
	if err != nil {
		return err
	}
	rec := modelRecord{
		ModelKey:    modelKey(model.Species, model.Region),
		Species:     model.Species,
		Region:      model.Region,
		Phases:      model.Phases,
		Accuracy:    model.Accuracy,
		Temperature: model.Temperature,
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save model %s: %w", rec.ModelKey, err)
	}
	return nil
}

func (s *SQLStore) DeleteModel(ctx context.Context, species, region string) error {
	res := s.db.WithContext(ctx).Where("model_key = ?", modelKey(species, region)).Delete(&modelRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete model %s: %w", modelKey(species, region), res.Error)
	}
	if res.RowsAffected == 0 {
		return modelNotFound(species, region)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
