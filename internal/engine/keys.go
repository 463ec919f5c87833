package engine

import (
	"strconv"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/store"
)

// Settings key layout. The values are plain strings: "true"/"false", HH:MM or an integer.
const (
	keyPrefix       = "notif_"
	waterEnabledKey = keyPrefix + "water_enabled"
	waterCountKey   = keyPrefix + "water_count"
	waterStartKey   = keyPrefix + "water_start"
	waterEndKey     = keyPrefix + "water_end"
)

func enabledKey(channel string) string { return keyPrefix + channel + "_enabled" }

func timeKey(channel string) string { return keyPrefix + channel + "_time" }

func waterSlotKey(slot int) string {
	return keyPrefix + "water_slot_" + strconv.Itoa(slot) + "_time"
}

func boolValue(b bool) string { return strconv.FormatBool(b) }

func setting(key, value string) store.Setting {
	return store.Setting{Key: key, Value: value}
}

// clearedOverrides produces the writes that reset every water slot to auto.
func clearedOverrides() []store.Setting {
	out := make([]store.Setting, 0, domain.MaxWaterSlots)
	for i := 0; i < domain.MaxWaterSlots; i++ {
		out = append(out, setting(waterSlotKey(i), ""))
	}
	return out
}
