package notify

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"shareit/internal/events"
	"shareit/internal/models"
)

// Sender is the subset of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes booking events to an operator chat. Delivery
// is best effort: failures are logged and never surface to callers.
type TelegramNotifier struct {
	sender Sender
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info().Str("bot", botAPI.Self.UserName).Msg("telegram notifier authorized")
	return &TelegramNotifier{sender: botAPI, chatID: chatID, logger: logger}, nil
}

// NewTelegramNotifierWithSender is used by tests.
func NewTelegramNotifierWithSender(sender Sender, chatID int64, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: logger}
}

// Subscribe wires the notifier to booking events on the bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBookingEvent(n.bookingCreatedText))
	bus.Subscribe(events.EventBookingDecided, n.onBookingEvent(n.bookingDecidedText))
}

func (n *TelegramNotifier) onBookingEvent(format func(events.BookingEventPayload) string) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			n.logger.Error().Err(err).Str("event", event.Type).Msg("failed to decode booking event")
			return nil
		}
		n.send(format(payload))
		return nil
	}
}

func (n *TelegramNotifier) bookingCreatedText(p events.BookingEventPayload) string {
	return fmt.Sprintf("📦 New booking #%d\nItem: %s\nBooker: %d\n%s — %s",
		p.BookingID, p.ItemName, p.BookerID,
		p.Start.Format("02.01.2006 15:04"), p.End.Format("02.01.2006 15:04"))
}

func (n *TelegramNotifier) bookingDecidedText(p events.BookingEventPayload) string {
	icon := "✅"
	if p.Status != models.StatusApproved {
		icon = "❌"
	}
	return fmt.Sprintf("%s Booking #%d for %s is now %s", icon, p.BookingID, p.ItemName, p.Status)
}

func (n *TelegramNotifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("failed to send telegram notification")
	}
}
