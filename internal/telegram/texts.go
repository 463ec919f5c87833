package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/engine"
)

// UI texts in English
const (
	startText = "👋 I keep your health reminders on schedule.\n\n" +
		"This chat is now linked: weigh-ins, meals, planning and water reminders will arrive here.\n\n" +
		"Use /settings to switch reminders on or off and /status to see when they fire."
	notLinkedText = "This bot is linked to another chat. Send /start from the linked chat."
	helpText      = "Commands:\n" +
		"/status – current reminders\n" +
		"/settings – switch reminders on or off\n" +
		"/on <reminder>, /off <reminder>\n" +
		"/time <reminder> HH:MM\n" +
		"/water – hydration reminders\n" +
		"/all on|off\n" +
		"/export – settings as YAML"
	waterHelpText = "Water reminders:\n" +
		"/water on|off\n" +
		"/water count <1..8>\n" +
		"/water window 08:00-20:00\n" +
		"/water slot <1..8> HH:MM\n" +
		"/water reset – even spacing again"
)

var weekdayNames = [...]string{"", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func toggledText(key string, on bool) string {
	if on {
		return "✅ " + key + " enabled"
	}
	return "⏸ " + key + " disabled"
}

// slotMovedText confirms a slot override; slot is 0-based.
func slotMovedText(slot int, clock string) string {
	return fmt.Sprintf("Water slot %d moved to %s", slot+1, clock)
}

func mark(on bool) string {
	if on {
		return "✅"
	}
	return "▫️"
}

// statusText renders the snapshot grouped by section.
func statusText(s engine.Snapshot) string {
	var b strings.Builder
	b.WriteString("🧾 Your reminders")
	if !s.Permission.Granted() {
		b.WriteString(" (notifications: " + s.Permission.String() + ")")
	}
	b.WriteString("\n")

	var section domain.Section
	for _, c := range s.Channels {
		if c.Section != section {
			section = c.Section
			b.WriteString("\n" + strings.ToUpper(string(section)) + "\n")
		}
		when := c.Time
		if c.Weekday != 0 {
			when = weekdayNames[c.Weekday] + " " + when
		}
		fmt.Fprintf(&b, "%s %s – %s", mark(c.Enabled), c.Key, when)
		if c.AdaptsTo != "" {
			fmt.Fprintf(&b, " (follows %s)", c.AdaptsTo)
		}
		b.WriteString("\n")
	}

	w := s.Water
	fmt.Fprintf(&b, "\nWATER\n%s %d× between %s and %s\n", mark(w.Enabled), w.Count, w.Start, w.End)
	for _, slot := range w.Slots {
		note := ""
		if slot.Override {
			note = " ✏️"
		}
		fmt.Fprintf(&b, "  %d. %s%s\n", slot.Index+1, slot.Time, note)
	}
	return b.String()
}

// mainMenuKeyboard builds the persistent reply keyboard.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/settings"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/all on"),
			tgbotapi.NewKeyboardButton("/all off"),
		),
	)
}

// settingsKeyboard has one row per channel (toggle + time) and the water controls.
func settingsKeyboard(s engine.Snapshot) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range s.Channels {
		row := tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(c.Enabled)+" "+c.Label, "toggle:"+c.Key),
		)
		if c.AdaptsTo == "" {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🕘 "+c.Time, "time:"+c.Key))
		}
		rows = append(rows, row)
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(s.Water.Enabled)+" 💧 Water", "water:toggle"),
			tgbotapi.NewInlineKeyboardButtonData("🕘 "+s.Water.Start+"–"+s.Water.End, "water:window"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("4×", "water:count:4"),
			tgbotapi.NewInlineKeyboardButtonData("6×", "water:count:6"),
			tgbotapi.NewInlineKeyboardButtonData("8×", "water:count:8"),
			tgbotapi.NewInlineKeyboardButtonData("↺ Even spacing", "water:reset"),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
