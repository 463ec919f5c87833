package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/engine"
)

// Pending state prefixes used in conversational flows.
const (
	pendingTime   = "await_time:" // followed by channel key
	pendingWindow = "await_window"
)

// Reminders is the engine surface driven by the bot.
type Reminders interface {
	ToggleChannel(ctx context.Context, key string, enabled bool) error
	SetChannelTime(ctx context.Context, key, clock string) error
	ToggleWater(ctx context.Context, enabled bool) error
	SetWaterCount(ctx context.Context, n int) error
	SetWaterWindow(ctx context.Context, start, end string) error
	SetWaterSlotTime(ctx context.Context, slot int, clock string) error
	ResetWaterSpacing(ctx context.Context) error
	EnableAll(ctx context.Context) error
	DisableAll(ctx context.Context) error
	Reconcile(ctx context.Context) error
	Snapshot() engine.Snapshot
}

// Binder records the chat that receives alerts.
type Binder interface {
	Bind(ctx context.Context, chatID int64) error
	ChatID() int64
}

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot    *tgbotapi.BotAPI
	log    *zap.Logger
	rem    Reminders
	binder Binder
	state  map[int64]string // chatID -> pending state
	mu     sync.RWMutex
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, rem Reminders, binder Binder) *Router {
	return &Router{
		bot:    bot,
		log:    log,
		rem:    rem,
		binder: binder,
		state:  make(map[int64]string),
	}
}

// setPending sets a pending state for a chat (non-persistent, in-memory).
func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// getPending returns current pending state for a chat.
func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

// clearPending clears a pending state for a chat.
func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// authorized reports whether chatID may change settings. Before any chat is bound
// only /start is accepted.
func (r *Router) authorized(chatID int64) bool {
	bound := r.binder.ChatID()
	return bound != 0 && bound == chatID
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID

		if msg.IsCommand() && msg.Command() == "start" {
			r.handleStart(ctx, chatID)
			return
		}
		if !r.authorized(chatID) {
			r.sendText(chatID, notLinkedText)
			return
		}
		if !msg.IsCommand() {
			// Free-form text answers a pending "custom" prompt.
			r.handleFreeForm(ctx, chatID, strings.TrimSpace(msg.Text))
			return
		}

		args := strings.Fields(msg.CommandArguments())
		switch msg.Command() {
		case "status":
			r.handleStatus(chatID)
		case "settings":
			r.handleSettings(chatID)
		case "on", "off":
			r.handleToggleCommand(ctx, chatID, msg.Command() == "on", args)
		case "time":
			r.handleTimeCommand(ctx, chatID, args)
		case "water":
			r.handleWaterCommand(ctx, chatID, args)
		case "all":
			r.handleAllCommand(ctx, chatID, args)
		case "export":
			r.handleExport(chatID)
		default:
			r.sendText(chatID, helpText)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return
		}
		chatID := cb.Message.Chat.ID
		if !r.authorized(chatID) {
			_ = r.answerCallback(cb.ID, "Not linked")
			return
		}
		r.handleCallback(ctx, chatID, cb.Data, cb.ID)
	}
}
