package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ykvlv/health-reminders/internal/scheduler"
	"github.com/ykvlv/health-reminders/internal/store"
)

const chatIDKey = "bot_chat_id"

// chatBinding persists the delivery chat and hands it to the gateway.
type chatBinding struct {
	repo store.Repo
	gw   *scheduler.Gateway
}

func (b *chatBinding) Bind(ctx context.Context, chatID int64) error {
	if err := b.repo.Write(ctx, chatIDKey, strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("persist chat id: %w", err)
	}
	b.gw.Bind(chatID)
	return nil
}

func (b *chatBinding) ChatID() int64 { return b.gw.ChatID() }

// restore re-binds the chat stored by a previous run, if any.
func (b *chatBinding) restore(ctx context.Context) (int64, error) {
	values, err := b.repo.ReadAllMatching(ctx, chatIDKey)
	if err != nil {
		return 0, err
	}
	raw, ok := values[chatIDKey]
	if !ok {
		return 0, nil
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("stored chat id %q: %w", raw, err)
	}
	b.gw.Bind(chatID)
	return chatID, nil
}
