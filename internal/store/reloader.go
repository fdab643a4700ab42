package store

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reloader re-reads pack files into a MemoryStore on a cron schedule. A pack
// that fails to load or validate leaves the previous content in place.
type Reloader struct {
	store    *MemoryStore
	paths    []string
	schedule string
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewReloader(store *MemoryStore, paths []string, schedule string, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		store:    store,
		paths:    append([]string(nil), paths...),
		schedule: schedule,
		logger:   logger,
	}
}

// Reload loads every pack and swaps the store content.
func (r *Reloader) Reload() error {
	pack, err := LoadPacks(r.paths)
	if err != nil {
		return err
	}
	if err := r.store.Replace(pack.Rules, pack.Models); err != nil {
		return fmt.Errorf("replace store content: %w", err)
	}
	r.logger.Info("rule packs loaded",
		zap.Strings("paths", r.paths),
		zap.Int("rules", len(pack.Rules)),
		zap.Int("models", len(pack.Models)))
	return nil
}

// Start loads once and then schedules reloads. An empty schedule only loads.
func (r *Reloader) Start() error {
	if err := r.Reload(); err != nil {
		return err
	}
	if r.schedule == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() {
		if err := r.Reload(); err != nil {
			r.logger.Warn("scheduled pack reload failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", r.schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("pack reload scheduled", zap.String("schedule", r.schedule))
	return nil
}

// Stop halts scheduled reloads and waits for a running one to finish.
func (r *Reloader) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
