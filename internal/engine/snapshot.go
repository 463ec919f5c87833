package engine

import (
	"gopkg.in/yaml.v3"

	"github.com/ykvlv/health-reminders/internal/domain"
)

// Snapshot is a read-only view of the engine state for display and export.
type Snapshot struct {
	Permission domain.Permission `json:"permission" yaml:"permission"`
	Channels   []ChannelView     `json:"channels" yaml:"channels"`
	Water      WaterView         `json:"water" yaml:"water"`
}

type ChannelView struct {
	Key            string         `json:"key" yaml:"key"`
	Label          string         `json:"label" yaml:"label"`
	Section        domain.Section `json:"section" yaml:"section"`
	NotificationID int            `json:"notification_id" yaml:"notification_id"`
	Enabled        bool           `json:"enabled" yaml:"enabled"`
	Time           string         `json:"time" yaml:"time"`
	Weekday        int            `json:"weekday,omitempty" yaml:"weekday,omitempty"`
	AdaptsTo       string         `json:"adapts_to,omitempty" yaml:"adapts_to,omitempty"`
}

type WaterView struct {
	Enabled bool       `json:"enabled" yaml:"enabled"`
	Count   int        `json:"count" yaml:"count"`
	Start   string     `json:"start" yaml:"start"`
	End     string     `json:"end" yaml:"end"`
	Slots   []SlotView `json:"slots" yaml:"slots"`
}

type SlotView struct {
	Index          int    `json:"index" yaml:"index"`
	NotificationID int    `json:"notification_id" yaml:"notification_id"`
	Time           string `json:"time" yaml:"time"`
	Override       bool   `json:"override" yaml:"override"`
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{Permission: e.permission}
	for _, c := range domain.Catalog() {
		snap.Channels = append(snap.Channels, ChannelView{
			Key:            c.Key,
			Label:          c.Label,
			Section:        c.Section,
			NotificationID: c.NotificationID,
			Enabled:        e.channels[c.Key].enabled,
			Time:           e.effectiveTime(c),
			Weekday:        c.Weekday,
			AdaptsTo:       c.AdaptsTo,
		})
	}

	snap.Water = WaterView{
		Enabled: e.water.enabled,
		Count:   e.water.count,
		Start:   e.water.start,
		End:     e.water.end,
	}
	for i, t := range e.waterTimes() {
		snap.Water.Slots = append(snap.Water.Slots, SlotView{
			Index:          i,
			NotificationID: domain.WaterNotificationID(i),
			Time:           t,
			Override:       e.water.overrides[i] != "",
		})
	}
	return snap
}

// YAML renders the snapshot for export.
func (s Snapshot) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
