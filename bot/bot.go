package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gosha-popular/fstock-bot/services"
	"github.com/gosha-popular/fstock-bot/storage"
	"github.com/gosha-popular/fstock-bot/utils"
)

var monthNames = map[time.Month]string{
	time.January:   "январь",
	time.February:  "февраль",
	time.March:     "март",
	time.April:     "апрель",
	time.May:       "май",
	time.June:      "июнь",
	time.July:      "июль",
	time.August:    "август",
	time.September: "сентябрь",
	time.October:   "октябрь",
	time.November:  "ноябрь",
	time.December:  "декабрь",
}

// Bot delivers rendered reports over Telegram and maintains the subscriber
// registry from incoming updates. Report content comes entirely from the
// Renderer; the bot only adds the period header.
type Bot struct {
	api      *tgbotapi.BotAPI
	subs     storage.SubscriberStore
	pipeline *services.Pipeline
	renderer *services.Renderer
	logger   *utils.Logger
	admins   map[int64]struct{}
}

// New authorizes the bot against the Telegram API.
func New(token string, admins []int64, subs storage.SubscriberStore,
	pipeline *services.Pipeline, renderer *services.Renderer, logger *utils.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot: authorize: %w", err)
	}

	adminSet := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		adminSet[id] = struct{}{}
	}

	logger.Info("[bot] authorized as @%s", api.Self.UserName)
	return &Bot{
		api:      api,
		subs:     subs,
		pipeline: pipeline,
		renderer: renderer,
		logger:   logger,
		admins:   adminSet,
	}, nil
}

// Run polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "my_chat_member"}

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.MyChatMember != nil {
		b.handleChatMember(update.MyChatMember)
		return
	}
	if update.Message == nil || update.Message.From == nil || !update.Message.IsCommand() {
		return
	}

	msg := update.Message
	switch msg.Command() {
	case "start":
		if err := b.subs.AddUser(msg.From.ID, msg.From.UserName); err != nil {
			b.logger.Error("[bot] register user %d: %v", msg.From.ID, err)
			return
		}
		b.reply(msg.Chat.ID, "Вы подписаны на отчеты об индексе цен продуктовой корзины.")
	case "send":
		if _, ok := b.admins[msg.From.ID]; !ok {
			return
		}
		b.handleSend(ctx, msg)
	}
}

func (b *Bot) handleSend(ctx context.Context, msg *tgbotapi.Message) {
	switch strings.TrimSpace(msg.CommandArguments()) {
	case "week":
		b.SendWeekly()
	case "month":
		b.SendMonthly()
	case "parse":
		b.pipeline.ScrapeAll(ctx)
		b.pipeline.AggregateAll()
		b.reply(msg.Chat.ID, "Парсинг завершен.")
	default:
		b.reply(msg.Chat.ID, "I don't know this command")
	}
}

// handleChatMember tracks the bot's own membership in channels: added as
// member/admin → subscribe the channel, removed → deactivate it.
func (b *Bot) handleChatMember(m *tgbotapi.ChatMemberUpdated) {
	if m.Chat.Type != "channel" {
		return
	}

	switch m.NewChatMember.Status {
	case "member", "administrator":
		if err := b.subs.AddChannel(m.Chat.ID, m.Chat.Title); err != nil {
			b.logger.Error("[bot] register channel %d: %v", m.Chat.ID, err)
		} else {
			b.logger.Info("[bot] channel subscribed: %s", m.Chat.Title)
		}
	case "left", "kicked":
		if err := b.subs.DeactivateChannel(m.Chat.ID); err != nil {
			b.logger.Error("[bot] deactivate channel %d: %v", m.Chat.ID, err)
		} else {
			b.logger.Info("[bot] channel deactivated: %s", m.Chat.Title)
		}
	}
}

// SendWeekly renders and broadcasts the run-over-run report.
func (b *Bot) SendWeekly() {
	body, err := b.renderer.RunOverRun()
	if err != nil {
		b.logger.Error("[bot] weekly report: %v", err)
		return
	}

	header := fmt.Sprintf("<b>Еженедельный отчет.\nИндекс цен на продуктовую корзину на %s:</b>\n\n",
		time.Now().Format("02.01.2006"))
	b.broadcast(header + body)
}

// SendMonthly renders and broadcasts the report for the previous calendar
// month. In January that is December of the prior year.
func (b *Bot) SendMonthly() {
	prev := time.Now().AddDate(0, -1, 0)
	body, err := b.renderer.Monthly(prev.Month(), prev.Year())
	if err != nil {
		b.logger.Error("[bot] monthly report: %v", err)
		return
	}

	header := fmt.Sprintf("<b>Ежемесячный отчет.\nИндекс цен на продуктовую корзину на %s %d:</b>\n\n",
		monthNames[prev.Month()], prev.Year())
	b.broadcast(header + body)
}

// broadcast delivers the text to every user and active channel. Delivery
// failures are per-recipient: a channel that blocked the bot is deactivated,
// everything else is logged and skipped.
func (b *Bot) broadcast(text string) {
	users, err := b.subs.Users()
	if err != nil {
		b.logger.Error("[bot] fetch users: %v", err)
	}
	for _, user := range users {
		if err := b.send(user.ID, text); err != nil {
			b.logger.Error("[bot] send to user %d: %v", user.ID, err)
		}
	}

	channels, err := b.subs.ActiveChannels()
	if err != nil {
		b.logger.Error("[bot] fetch channels: %v", err)
	}
	for _, channel := range channels {
		err := b.send(channel.ID, text)
		if err == nil {
			continue
		}
		b.logger.Error("[bot] send to channel %q: %v", channel.Title, err)
		if strings.Contains(err.Error(), "bot was blocked") ||
			strings.Contains(err.Error(), "bot was kicked") {
			if derr := b.subs.DeactivateChannel(channel.ID); derr != nil {
				b.logger.Error("[bot] deactivate channel %d: %v", channel.ID, derr)
			}
		}
	}
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.send(chatID, text); err != nil {
		b.logger.Error("[bot] reply to %d: %v", chatID, err)
	}
}
