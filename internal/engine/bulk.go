package engine

import (
	"context"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/store"
)

func allEnabledWrites(enabled bool) []store.Setting {
	catalog := domain.Catalog()
	writes := make([]store.Setting, 0, len(catalog)+1)
	for _, c := range catalog {
		writes = append(writes, setting(enabledKey(c.Key), boolValue(enabled)))
	}
	return append(writes, setting(waterEnabledKey, boolValue(enabled)))
}

// EnableAll turns on every channel and the water group. Permission is requested once;
// if it is refused nothing is written.
func (e *Engine) EnableAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}

	log := e.opLogger("enable_all")
	if !e.ensureGranted(ctx, log) {
		return ErrPermissionDenied
	}
	if err := e.persist(ctx, allEnabledWrites(true)...); err != nil {
		return err
	}
	for _, st := range e.channels {
		st.enabled = true
	}
	e.water.enabled = true

	for _, c := range domain.Catalog() {
		e.rescheduleChannel(ctx, log, c)
	}
	e.rescheduleActiveWater(ctx, log)
	e.cancelWaterFrom(ctx, log, e.water.count)
	return nil
}

// DisableAll turns off every channel and the water group and cancels all their ids.
func (e *Engine) DisableAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}

	log := e.opLogger("disable_all")
	if err := e.persist(ctx, allEnabledWrites(false)...); err != nil {
		return err
	}
	for _, st := range e.channels {
		st.enabled = false
	}
	e.water.enabled = false

	for _, c := range domain.Catalog() {
		e.cancel(ctx, log, c.NotificationID)
	}
	e.cancelWaterFrom(ctx, log, 0)
	return nil
}
