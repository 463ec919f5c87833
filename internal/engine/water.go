package engine

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/store"
)

// waterTimes returns the effective time of each active slot: the override if set,
// otherwise the auto-distributed time for the current count and window.
func (e *Engine) waterTimes() []string {
	times := domain.Distribute(e.water.count, e.water.start, e.water.end)
	for i := range times {
		if o := e.water.overrides[i]; o != "" {
			times[i] = o
		}
	}
	return times
}

func (e *Engine) scheduleWaterSlot(ctx context.Context, log *zap.Logger, slot int, times []string) {
	e.schedule(ctx, log, domain.Alert{
		ID:             domain.WaterNotificationID(slot),
		Title:          "💧 Drink water",
		Body:           fmt.Sprintf("Glass %d of %d. Stay hydrated!", slot+1, len(times)),
		At:             domain.SpecAt(times[slot], 0),
		DisplayChannel: domain.WaterDisplayID,
	})
}

func (e *Engine) rescheduleWaterSlot(ctx context.Context, log *zap.Logger, slot int, times []string) {
	e.cancel(ctx, log, domain.WaterNotificationID(slot))
	e.scheduleWaterSlot(ctx, log, slot, times)
}

// rescheduleActiveWater reschedules slots [0, count).
func (e *Engine) rescheduleActiveWater(ctx context.Context, log *zap.Logger) {
	times := e.waterTimes()
	for i := range times {
		e.rescheduleWaterSlot(ctx, log, i, times)
	}
}

func (e *Engine) cancelWaterFrom(ctx context.Context, log *zap.Logger, from int) {
	for i := from; i < domain.MaxWaterSlots; i++ {
		e.cancel(ctx, log, domain.WaterNotificationID(i))
	}
}

// ToggleWater enables or disables the hydration reminders as a group.
func (e *Engine) ToggleWater(ctx context.Context, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}

	log := e.opLogger("toggle_water").With(zap.Bool("enabled", enabled))
	if enabled && !e.ensureGranted(ctx, log) {
		if err := e.persist(ctx, setting(waterEnabledKey, boolValue(false))); err != nil {
			return err
		}
		e.water.enabled = false
		e.cancelWaterFrom(ctx, log, 0)
		return ErrPermissionDenied
	}

	if err := e.persist(ctx, setting(waterEnabledKey, boolValue(enabled))); err != nil {
		return err
	}
	e.water.enabled = enabled

	if enabled {
		e.rescheduleActiveWater(ctx, log)
		e.cancelWaterFrom(ctx, log, e.water.count)
	} else {
		e.cancelWaterFrom(ctx, log, 0)
	}
	return nil
}

// SetWaterCount clamps n to [1, 8]. Slots at or past the new count are cancelled and, when
// water is enabled, every remaining slot moves to the distribution for the new count.
func (e *Engine) SetWaterCount(ctx context.Context, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}

	n = domain.ClampWaterCount(n)
	log := e.opLogger("set_water_count").With(zap.Int("count", n))
	if err := e.persist(ctx, setting(waterCountKey, strconv.Itoa(n))); err != nil {
		return err
	}
	e.water.count = n

	e.cancelWaterFrom(ctx, log, n)
	if e.water.enabled {
		e.rescheduleActiveWater(ctx, log)
	}
	return nil
}

// SetWaterWindow stores a new window and clears every slot override: manual edits were
// made relative to the old window.
func (e *Engine) SetWaterWindow(ctx context.Context, start, end string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}
	s, err := domain.NormalizeClock(start)
	if err != nil {
		return fmt.Errorf("window start: %w", err)
	}
	en, err := domain.NormalizeClock(end)
	if err != nil {
		return fmt.Errorf("window end: %w", err)
	}

	log := e.opLogger("set_water_window").With(zap.String("start", s), zap.String("end", en))
	writes := append([]store.Setting{setting(waterStartKey, s), setting(waterEndKey, en)}, clearedOverrides()...)
	if err := e.persist(ctx, writes...); err != nil {
		return err
	}
	e.water.start, e.water.end = s, en
	e.water.overrides = [domain.MaxWaterSlots]string{}

	if e.water.enabled {
		e.rescheduleActiveWater(ctx, log)
	}
	return nil
}

// SetWaterSlotTime overrides a single slot. Only that slot is rescheduled.
func (e *Engine) SetWaterSlotTime(ctx context.Context, slot int, clock string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}
	if slot < 0 || slot >= domain.MaxWaterSlots {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	t, err := domain.NormalizeClock(clock)
	if err != nil {
		return err
	}

	log := e.opLogger("set_water_slot_time").With(zap.Int("slot", slot), zap.String("time", t))
	if err := e.persist(ctx, setting(waterSlotKey(slot), t)); err != nil {
		return err
	}
	e.water.overrides[slot] = t

	if e.water.enabled && slot < e.water.count {
		e.rescheduleWaterSlot(ctx, log, slot, e.waterTimes())
	}
	return nil
}

// ResetWaterSpacing drops all overrides and returns every slot to auto-distribution.
func (e *Engine) ResetWaterSpacing(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}

	log := e.opLogger("reset_water_spacing")
	if err := e.persist(ctx, clearedOverrides()...); err != nil {
		return err
	}
	e.water.overrides = [domain.MaxWaterSlots]string{}

	if e.water.enabled {
		e.rescheduleActiveWater(ctx, log)
	}
	return nil
}

// WaterSlotTimes returns the effective times of the active slots.
func (e *Engine) WaterSlotTimes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.waterTimes()
}
