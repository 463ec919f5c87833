package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
	"github.com/ykvlv/health-reminders/internal/engine"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// reply reports the outcome of an engine call.
func (r *Router) reply(chatID int64, op string, err error, ok string) {
	if err != nil {
		if !isUserError(err) {
			r.log.Error(op+" failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
		r.sendText(chatID, userError(err))
		return
	}
	r.sendText(chatID, ok)
}

func isUserError(err error) bool {
	return errors.Is(err, engine.ErrPermissionDenied) ||
		errors.Is(err, engine.ErrUnknownChannel) ||
		errors.Is(err, engine.ErrDerivedTime) ||
		errors.Is(err, engine.ErrSlotOutOfRange) ||
		errors.Is(err, domain.ErrInvalidClock)
}

// userError maps engine errors to chat-friendly text.
func userError(err error) string {
	switch {
	case errors.Is(err, engine.ErrPermissionDenied):
		return "Notifications are not allowed yet. Send /start to link this chat."
	case errors.Is(err, engine.ErrUnknownChannel):
		return "Unknown reminder. See /status for the list."
	case errors.Is(err, engine.ErrDerivedTime):
		return "This reminder follows another one and has no time of its own."
	case errors.Is(err, engine.ErrSlotOutOfRange):
		return "Water slots are numbered 1–8."
	case errors.Is(err, domain.ErrInvalidClock):
		return "Invalid time. Example: 07:30"
	default:
		return "Something went wrong. Please try again later."
	}
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	if bound := r.binder.ChatID(); bound != 0 && bound != chatID {
		r.sendText(chatID, notLinkedText)
		return
	}
	if err := r.binder.Bind(ctx, chatID); err != nil {
		r.log.Error("bind chat failed", zap.Error(err))
		r.sendText(chatID, "Could not link this chat. Please try again later.")
		return
	}
	// Permission changed: bring the queue in line with stored preferences.
	if err := r.rem.Reconcile(ctx); err != nil {
		r.log.Warn("reconcile after bind failed", zap.Error(err))
	}
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleStatus(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, statusText(r.rem.Snapshot()))
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleSettings(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Tap a reminder to switch it on or off:")
	msg.ReplyMarkup = settingsKeyboard(r.rem.Snapshot())
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleExport(chatID int64) {
	out, err := r.rem.Snapshot().YAML()
	if err != nil {
		r.log.Error("export failed", zap.Error(err))
		r.sendText(chatID, "Could not export settings.")
		return
	}
	r.sendText(chatID, string(out))
}

// /on <key>, /off <key>
func (r *Router) handleToggleCommand(ctx context.Context, chatID int64, on bool, args []string) {
	if len(args) != 1 {
		r.sendText(chatID, "Usage: /on <reminder> or /off <reminder>")
		return
	}
	key := args[0]
	err := r.rem.ToggleChannel(ctx, key, on)
	r.reply(chatID, "toggle", err, toggledText(key, on))
}

// /time <key> [HH:MM]
func (r *Router) handleTimeCommand(ctx context.Context, chatID int64, args []string) {
	switch len(args) {
	case 1:
		if _, ok := domain.ChannelByKey(args[0]); !ok {
			r.sendText(chatID, userError(engine.ErrUnknownChannel))
			return
		}
		r.sendText(chatID, "Enter the new time as HH:MM (e.g., 07:30)")
		r.setPending(chatID, pendingTime+args[0])
	case 2:
		r.updateTime(ctx, chatID, args[0], args[1])
	default:
		r.sendText(chatID, "Usage: /time <reminder> HH:MM")
	}
}

func (r *Router) updateTime(ctx context.Context, chatID int64, key, clock string) {
	t, err := domain.NormalizeClock(clock)
	if err != nil {
		r.sendText(chatID, userError(err))
		return
	}
	err = r.rem.SetChannelTime(ctx, key, t)
	r.reply(chatID, "set time", err, "Time updated: "+key+" → "+t)
}

// /water on|off|reset|count N|window HH:MM-HH:MM|slot N HH:MM
func (r *Router) handleWaterCommand(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		r.sendText(chatID, waterHelpText)
		return
	}
	switch args[0] {
	case "on", "off":
		on := args[0] == "on"
		r.reply(chatID, "toggle water", r.rem.ToggleWater(ctx, on), toggledText("water", on))
	case "reset":
		r.reply(chatID, "reset water", r.rem.ResetWaterSpacing(ctx), "Water reminders are evenly spaced again.")
	case "count":
		n, err := parseCount(args)
		if err != nil {
			r.sendText(chatID, "Usage: /water count 1..8")
			return
		}
		r.reply(chatID, "water count", r.rem.SetWaterCount(ctx, n), "Water reminders per day: "+strconv.Itoa(domain.ClampWaterCount(n)))
	case "window":
		if len(args) != 2 {
			r.sendText(chatID, "Usage: /water window 08:00-20:00")
			return
		}
		r.updateWindow(ctx, chatID, args[1])
	case "slot":
		if len(args) != 3 {
			r.sendText(chatID, "Usage: /water slot <1..8> HH:MM")
			return
		}
		slot, clock, err := parseSlotArgs(args[1], args[2])
		if err != nil {
			r.sendText(chatID, userError(err))
			return
		}
		r.reply(chatID, "water slot", r.rem.SetWaterSlotTime(ctx, slot, clock), slotMovedText(slot, clock))
	default:
		r.sendText(chatID, waterHelpText)
	}
}

// parseSlotArgs reads a 1-based slot number and a clock time typed in chat.
// It returns the 0-based slot and the time in canonical HH:MM form.
func parseSlotArgs(slotArg, clockArg string) (int, string, error) {
	n, err := strconv.Atoi(slotArg)
	if err != nil || n < 1 || n > domain.MaxWaterSlots {
		return 0, "", engine.ErrSlotOutOfRange
	}
	clock, err := domain.NormalizeClock(clockArg)
	if err != nil {
		return 0, "", err
	}
	return n - 1, clock, nil
}

func parseCount(args []string) (int, error) {
	if len(args) != 2 {
		return 0, errors.New("expected one number")
	}
	return strconv.Atoi(args[1])
}

func (r *Router) updateWindow(ctx context.Context, chatID int64, text string) {
	start, end, err := domain.ParseWindow(text)
	if err != nil {
		r.sendText(chatID, "Invalid format. Example: 08:00–20:00")
		return
	}
	r.reply(chatID, "water window", r.rem.SetWaterWindow(ctx, start, end), "Water window updated: "+start+"–"+end)
}

// /all on|off
func (r *Router) handleAllCommand(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		r.sendText(chatID, "Usage: /all on or /all off")
		return
	}
	if args[0] == "on" {
		r.reply(chatID, "enable all", r.rem.EnableAll(ctx), "All reminders enabled ✅")
		return
	}
	r.reply(chatID, "disable all", r.rem.DisableAll(ctx), "All reminders paused ⏸")
}

// --- Inline buttons ---

func (r *Router) handleCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	switch {
	case strings.HasPrefix(data, "toggle:"):
		key := strings.TrimPrefix(data, "toggle:")
		on := !channelEnabled(r.rem.Snapshot(), key)
		r.reply(chatID, "toggle", r.rem.ToggleChannel(ctx, key, on), toggledText(key, on))
	case strings.HasPrefix(data, "time:"):
		r.handleTimeCommand(ctx, chatID, []string{strings.TrimPrefix(data, "time:")})
	case data == "water:toggle":
		on := !r.rem.Snapshot().Water.Enabled
		r.reply(chatID, "toggle water", r.rem.ToggleWater(ctx, on), toggledText("water", on))
	case data == "water:window":
		r.sendText(chatID, "Enter the water window as HH:MM–HH:MM (e.g., 08:00–20:00)")
		r.setPending(chatID, pendingWindow)
	case data == "water:reset":
		r.reply(chatID, "reset water", r.rem.ResetWaterSpacing(ctx), "Water reminders are evenly spaced again.")
	case strings.HasPrefix(data, "water:count:"):
		n, err := strconv.Atoi(strings.TrimPrefix(data, "water:count:"))
		if err != nil {
			return
		}
		r.reply(chatID, "water count", r.rem.SetWaterCount(ctx, n), "Water reminders per day: "+strconv.Itoa(domain.ClampWaterCount(n)))
	default:
		// Unknown callback: ignore silently
	}
}

// --- Free-form dispatcher (for all "Custom" inputs) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	pending := r.getPending(chatID)
	switch {
	case strings.HasPrefix(pending, pendingTime):
		r.clearPending(chatID)
		r.updateTime(ctx, chatID, strings.TrimPrefix(pending, pendingTime), text)
	case pending == pendingWindow:
		r.clearPending(chatID)
		r.updateWindow(ctx, chatID, text)
	default:
		// No pending flow: ignore free-form message
	}
}

func channelEnabled(s engine.Snapshot, key string) bool {
	for _, c := range s.Channels {
		if c.Key == key {
			return c.Enabled
		}
	}
	return false
}
