package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
)

// ToggleChannel enables or disables one catalog channel. Enabling requests permission
// first; a refusal persists enabled=false and returns ErrPermissionDenied.
func (e *Engine) ToggleChannel(ctx context.Context, key string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}
	c, err := lookupChannel(key)
	if err != nil {
		return err
	}

	log := e.opLogger("toggle_channel").With(zap.String("channel", key), zap.Bool("enabled", enabled))
	if enabled && !e.ensureGranted(ctx, log) {
		if err := e.persist(ctx, setting(enabledKey(key), boolValue(false))); err != nil {
			return err
		}
		e.channels[key].enabled = false
		e.cancel(ctx, log, c.NotificationID)
		return ErrPermissionDenied
	}

	if err := e.persist(ctx, setting(enabledKey(key), boolValue(enabled))); err != nil {
		return err
	}
	e.channels[key].enabled = enabled

	if enabled {
		e.rescheduleChannel(ctx, log, c)
	} else {
		e.cancel(ctx, log, c.NotificationID)
	}
	log.Debug("channel toggled")
	return nil
}

// SetChannelTime changes a channel's clock time and moves every enabled engage channel
// that adapts to it. Engage channels themselves return ErrDerivedTime.
func (e *Engine) SetChannelTime(ctx context.Context, key, clock string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireLoaded(); err != nil {
		return err
	}
	c, err := lookupChannel(key)
	if err != nil {
		return err
	}
	if c.IsEngage() {
		return ErrDerivedTime
	}
	t, err := domain.NormalizeClock(clock)
	if err != nil {
		return err
	}

	log := e.opLogger("set_channel_time").With(zap.String("channel", key), zap.String("time", t))
	if err := e.persist(ctx, setting(timeKey(key), t)); err != nil {
		return err
	}
	st := e.channels[key]
	st.time = t

	if st.enabled {
		e.rescheduleChannel(ctx, log, c)
	}
	for _, dep := range domain.DependentsOf(key) {
		if e.channels[dep.Key].enabled {
			e.rescheduleChannel(ctx, log, dep)
		}
	}
	return nil
}

// EffectiveTime returns the time a channel fires at. It never schedules anything.
func (e *Engine) EffectiveTime(key string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := lookupChannel(key)
	if err != nil {
		return "", err
	}
	return e.effectiveTime(c), nil
}

// Permission returns the last observed permission status.
func (e *Engine) Permission() domain.Permission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.permission
}
