package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/domain"
)

// ErrNoPermission is returned when alerts are scheduled before a delivery chat is bound.
var ErrNoPermission = errors.New("no delivery chat bound")

// missedGrace is how late an occurrence may be delivered; older ones are skipped.
const missedGrace = 10 * time.Minute

// Sender delivers a fired alert.
type Sender interface {
	SendAlert(chatID int64, text string, silent bool) error
}

type entry struct {
	alert domain.Alert
	next  time.Time
}

// Pending describes one queued alert.
type Pending struct {
	ID    int
	Title string
	Next  time.Time
}

// Gateway is an in-process recurring alert queue. Like a device alarm manager it keeps
// nothing across restarts and can only schedule and cancel.
type Gateway struct {
	log      *zap.Logger
	sender   Sender
	loc      *time.Location
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	chatID   int64
	alerts   map[int]*entry
	displays map[string]domain.DisplayChannel
	handled  map[int]time.Time // last occurrence delivered or skipped, per id; survives Cancel
}

// New creates a gateway firing alerts in loc, polling every interval.
func New(log *zap.Logger, sender Sender, loc *time.Location, interval time.Duration) *Gateway {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Gateway{
		log:      log,
		sender:   sender,
		loc:      loc,
		interval: interval,
		now:      time.Now,
		alerts:   make(map[int]*entry),
		displays: make(map[string]domain.DisplayChannel),
		handled:  make(map[int]time.Time),
	}
}

// Bind sets the chat alerts are delivered to. A bound chat counts as granted permission.
func (g *Gateway) Bind(chatID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chatID = chatID
}

// ChatID returns the bound chat, or 0.
func (g *Gateway) ChatID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chatID
}

func (g *Gateway) CheckPermission(context.Context) (domain.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chatID == 0 {
		return domain.PermissionPrompt, nil
	}
	return domain.PermissionGranted, nil
}

// RequestPermission cannot prompt anyone: the user grants it by starting the bot.
func (g *Gateway) RequestPermission(context.Context) (domain.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chatID == 0 {
		return domain.PermissionDenied, nil
	}
	return domain.PermissionGranted, nil
}

func (g *Gateway) RegisterDisplayChannel(_ context.Context, ch domain.DisplayChannel) error {
	if ch.ID == "" {
		return errors.New("display channel without id")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.displays[ch.ID] = ch
	return nil
}

// Schedule queues a recurring alert, replacing any alert with the same id.
// An occurrence whose minute is still running stays pending unless it was already handled,
// so a cancel and reschedule of the same alert never loses or repeats a delivery.
func (g *Gateway) Schedule(_ context.Context, a domain.Alert) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chatID == 0 {
		return ErrNoPermission
	}
	g.alerts[a.ID] = &entry{alert: a, next: g.firstPending(a)}
	return nil
}

func (g *Gateway) firstPending(a domain.Alert) time.Time {
	from := g.now().Truncate(time.Minute).Add(-time.Nanosecond)
	next := domain.NextOccurrence(from, a.At, g.loc)
	if last, ok := g.handled[a.ID]; ok && !next.After(last) {
		next = domain.NextOccurrence(last, a.At, g.loc)
	}
	return next
}

// Cancel removes an alert. Unknown ids are ignored.
func (g *Gateway) Cancel(_ context.Context, id int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.alerts, id)
	return nil
}

// Pending lists queued alerts ordered by next fire time.
func (g *Gateway) Pending() []Pending {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Pending, 0, len(g.alerts))
	for id, e := range g.alerts {
		out = append(out, Pending{ID: id, Title: e.alert.Title, Next: e.next})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Next.Equal(out[j].Next) {
			return out[i].ID < out[j].ID
		}
		return out[i].Next.Before(out[j].Next)
	})
	return out
}

// Run fires due alerts until ctx is canceled.
func (g *Gateway) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			g.tick(g.now())
		}
	}
}

type delivery struct {
	id     int
	text   string
	silent bool
}

// tick delivers every due alert once and advances it to its next occurrence.
func (g *Gateway) tick(now time.Time) {
	g.mu.Lock()
	chatID := g.chatID
	var due []delivery
	for id, e := range g.alerts {
		if now.Before(e.next) {
			continue
		}
		late := now.Sub(e.next)
		g.handled[id] = e.next
		e.next = domain.NextOccurrence(now, e.alert.At, g.loc)
		if late > missedGrace {
			g.log.Info("skipping missed occurrence", zap.Int("notification_id", id), zap.Duration("late", late))
			continue
		}
		due = append(due, delivery{id: id, text: e.alert.Title + "\n" + e.alert.Body, silent: g.silent(e.alert)})
	}
	g.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].id < due[j].id })
	for _, d := range due {
		if err := g.sender.SendAlert(chatID, d.text, d.silent); err != nil {
			g.log.Error("send failed", zap.Error(err), zap.Int("notification_id", d.id), zap.Int64("chatID", chatID))
		}
	}
}

// silent reports whether the alert's display channel has sound turned off.
func (g *Gateway) silent(a domain.Alert) bool {
	ch, ok := g.displays[a.DisplayChannel]
	return ok && !ch.Sound
}
