// Package engine decides which local reminders should exist and keeps an external,
// stateless alert queue in line with the persisted user preferences.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/store"
)

var (
	ErrNotLoaded        = errors.New("engine not loaded")
	ErrUnknownChannel   = errors.New("unknown channel")
	ErrDerivedTime      = errors.New("channel time is derived from another channel")
	ErrPermissionDenied = errors.New("notification permission not granted")
	ErrSlotOutOfRange   = errors.New("water slot out of range")
)

// Store is the durable key/value persistence the engine writes through to.
type Store interface {
	ReadAllMatching(ctx context.Context, prefix string) (map[string]string, error)
	Write(ctx context.Context, key, value string) error
}

// batchWriter is implemented by stores that can commit several keys atomically.
type batchWriter interface {
	WriteMany(ctx context.Context, settings []store.Setting) error
}

// Gateway places and removes recurring alerts on the device. It offers no query API.
type Gateway interface {
	CheckPermission(ctx context.Context) (domain.Permission, error)
	RequestPermission(ctx context.Context) (domain.Permission, error)
	RegisterDisplayChannel(ctx context.Context, ch domain.DisplayChannel) error
	Schedule(ctx context.Context, a domain.Alert) error
	Cancel(ctx context.Context, id int) error
}

type channelState struct {
	enabled bool
	time    string // empty for engage channels
}

type waterState struct {
	enabled   bool
	count     int
	start     string
	end       string
	overrides [domain.MaxWaterSlots]string // "" means auto-distributed
}

// Engine owns reminder state. Every exported method runs under one mutex, so operations
// never interleave: the device schedule always follows the last persisted value.
type Engine struct {
	mu       sync.Mutex
	store    Store
	gw       Gateway
	log      *zap.Logger
	displays []domain.DisplayChannel

	loaded     bool
	permission domain.Permission
	channels   map[string]*channelState
	water      waterState
}

// New creates an engine. Nothing is read or scheduled until Load.
func New(st Store, gw Gateway, log *zap.Logger, displays []domain.DisplayChannel) *Engine {
	e := &Engine{
		store:      st,
		gw:         gw,
		log:        log,
		displays:   displays,
		permission: domain.PermissionUnknown,
		channels:   make(map[string]*channelState),
	}
	e.hydrate(nil)
	return e
}

func (e *Engine) opLogger(op string) *zap.Logger {
	return e.log.With(zap.String("op", op), zap.String("op_id", uuid.NewString()))
}

// persist writes settings before any gateway call is made.
func (e *Engine) persist(ctx context.Context, settings ...store.Setting) error {
	if len(settings) == 1 {
		if err := e.store.Write(ctx, settings[0].Key, settings[0].Value); err != nil {
			return fmt.Errorf("persist %s: %w", settings[0].Key, err)
		}
		return nil
	}
	if bw, ok := e.store.(batchWriter); ok {
		if err := bw.WriteMany(ctx, settings); err != nil {
			return fmt.Errorf("persist batch: %w", err)
		}
		return nil
	}
	return e.writeSequential(ctx, settings)
}

// writeSequential is the fallback for stores without batches. When a write fails, the keys
// already written get their previous values back so the store never runs ahead of memory.
// Keys that did not exist before are restored as "", which reads back as the default.
func (e *Engine) writeSequential(ctx context.Context, settings []store.Setting) error {
	prev, err := e.store.ReadAllMatching(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("read before persist: %w", err)
	}
	for i, s := range settings {
		if err := e.store.Write(ctx, s.Key, s.Value); err != nil {
			for _, done := range settings[:i] {
				if rerr := e.store.Write(ctx, done.Key, prev[done.Key]); rerr != nil {
					e.log.Error("restore after failed persist", zap.String("key", done.Key), zap.Error(rerr))
				}
			}
			return fmt.Errorf("persist %s: %w", s.Key, err)
		}
	}
	return nil
}

// bestEffort runs a gateway call and swallows its failure.
func bestEffort(log *zap.Logger, action string, id int, fn func() error) {
	if err := fn(); err != nil {
		log.Warn("gateway call failed", zap.String("action", action), zap.Int("notification_id", id), zap.Error(err))
	}
}

func (e *Engine) cancel(ctx context.Context, log *zap.Logger, id int) {
	bestEffort(log, "cancel", id, func() error { return e.gw.Cancel(ctx, id) })
}

func (e *Engine) schedule(ctx context.Context, log *zap.Logger, a domain.Alert) {
	bestEffort(log, "schedule", a.ID, func() error { return e.gw.Schedule(ctx, a) })
}

// rescheduleChannel cancels the channel's id and schedules it at its effective time.
func (e *Engine) rescheduleChannel(ctx context.Context, log *zap.Logger, c domain.Channel) {
	e.cancel(ctx, log, c.NotificationID)
	e.schedule(ctx, log, domain.Alert{
		ID:             c.NotificationID,
		Title:          c.Title(),
		Body:           c.Body,
		At:             domain.SpecAt(e.effectiveTime(c), c.Weekday),
		DisplayChannel: c.DisplayChannel,
	})
}

// effectiveTime reads current state; engage channels trail their linked channel.
func (e *Engine) effectiveTime(c domain.Channel) string {
	if c.IsEngage() {
		linked, ok := e.channels[c.AdaptsTo]
		if !ok {
			return c.DefaultTime
		}
		return domain.AddMinutes(linked.time, domain.EngageOffsetMinutes)
	}
	return e.channels[c.Key].time
}

func (e *Engine) requireLoaded() error {
	if !e.loaded {
		return ErrNotLoaded
	}
	return nil
}

func lookupChannel(key string) (domain.Channel, error) {
	c, ok := domain.ChannelByKey(key)
	if !ok {
		return domain.Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, key)
	}
	return c, nil
}
