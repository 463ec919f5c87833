package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Notifier delivers fired reminders. It satisfies scheduler.Sender.
type Notifier struct {
	bot *tgbotapi.BotAPI
}

func NewNotifier(bot *tgbotapi.BotAPI) *Notifier {
	return &Notifier{bot: bot}
}

// SendAlert sends text to chatID; silent alerts arrive without a sound.
func (n *Notifier) SendAlert(chatID int64, text string, silent bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableNotification = silent
	_, err := n.bot.Send(msg)
	return err
}
