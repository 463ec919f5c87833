package engine

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
)

// Load rehydrates state from the store, registers display channels, observes the current
// permission and, when granted, runs a full reconcile. Calling it again re-reads everything.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	log := e.opLogger("load")
	values, err := e.store.ReadAllMatching(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	e.hydrate(values)
	e.loaded = true

	for _, d := range e.displays {
		d := d
		bestEffort(log, "register_display_channel", 0, func() error { return e.gw.RegisterDisplayChannel(ctx, d) })
	}

	e.permission = e.checkPermission(ctx, log)
	if e.permission.Granted() {
		e.reconcile(ctx, log)
	}
	log.Info("reminder state loaded",
		zap.Stringer("permission", e.permission),
		zap.Int("stored_keys", len(values)),
	)
	return nil
}

// Reconcile re-observes the permission and repeats the full reconcile from in-memory state,
// repairing any drift in the device schedule. It is safe to run at any time.
func (e *Engine) Reconcile(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}

	log := e.opLogger("reconcile")
	e.permission = e.checkPermission(ctx, log)
	if !e.permission.Granted() {
		log.Debug("reconcile skipped", zap.Stringer("permission", e.permission))
		return nil
	}
	e.reconcile(ctx, log)
	return nil
}

// reconcile cancels then reschedules every id that should be active and cancels the rest.
// Its calls depend only on state, never on what the device currently holds.
func (e *Engine) reconcile(ctx context.Context, log *zap.Logger) {
	for _, c := range domain.Catalog() {
		if e.channels[c.Key].enabled {
			e.rescheduleChannel(ctx, log, c)
		} else {
			e.cancel(ctx, log, c.NotificationID)
		}
	}
	for i := 0; i < domain.MaxWaterSlots; i++ {
		e.cancel(ctx, log, domain.WaterNotificationID(i))
	}
	if e.water.enabled {
		times := e.waterTimes()
		for i := range times {
			e.scheduleWaterSlot(ctx, log, i, times)
		}
	}
}

func (e *Engine) checkPermission(ctx context.Context, log *zap.Logger) domain.Permission {
	p, err := e.gw.CheckPermission(ctx)
	if err != nil {
		log.Warn("permission check failed", zap.Error(err))
		return domain.PermissionUnknown
	}
	return p
}

// ensureGranted requests permission unless it has already been observed as granted.
func (e *Engine) ensureGranted(ctx context.Context, log *zap.Logger) bool {
	if e.permission.Granted() {
		return true
	}
	p, err := e.gw.RequestPermission(ctx)
	if err != nil {
		log.Warn("permission request failed", zap.Error(err))
		return false
	}
	e.permission = p
	log.Info("permission requested", zap.Stringer("permission", p))
	return p.Granted()
}

// hydrate replaces in-memory state with persisted values, falling back to defaults
// for anything missing or malformed.
func (e *Engine) hydrate(values map[string]string) {
	for _, c := range domain.Catalog() {
		st := &channelState{enabled: values[enabledKey(c.Key)] == "true"}
		if !c.IsEngage() {
			st.time = c.DefaultTime
			if raw, ok := values[timeKey(c.Key)]; ok {
				if t, err := domain.NormalizeClock(raw); err == nil {
					st.time = t
				} else {
					e.log.Warn("ignoring malformed stored time", zap.String("channel", c.Key), zap.String("value", raw))
				}
			}
		}
		e.channels[c.Key] = st
	}

	w := waterState{
		enabled: values[waterEnabledKey] == "true",
		count:   domain.DefaultWaterCount,
		start:   domain.DefaultWaterStart,
		end:     domain.DefaultWaterEnd,
	}
	if raw, ok := values[waterCountKey]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= domain.MaxWaterSlots {
			w.count = n
		} else {
			e.log.Warn("ignoring malformed water count", zap.String("value", raw))
		}
	}
	if t, err := domain.NormalizeClock(values[waterStartKey]); err == nil {
		w.start = t
	}
	if t, err := domain.NormalizeClock(values[waterEndKey]); err == nil {
		w.end = t
	}
	for i := range w.overrides {
		if t, err := domain.NormalizeClock(values[waterSlotKey(i)]); err == nil {
			w.overrides[i] = t
		}
	}
	e.water = w
}
