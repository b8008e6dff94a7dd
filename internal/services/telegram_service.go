package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"givehub/internal/models"
)

// TelegramService pings the reviewer chat when a new verification request
// lands. Optional: the whole integration is skipped when no bot token is
// configured.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramService(botToken string, chatID int64) (*TelegramService, error) {
	if botToken == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, chatID: chatID}, nil
}

func (t *TelegramService) AlertNewRequest(org *models.Organization, req *models.VerificationRequest) error {
	if t == nil || t.bot == nil {
		return nil
	}
	text := fmt.Sprintf(
		"\U0001F4C4 New verification request #%d\nOrganization: %s\nContact: %s\nDocument: %s",
		req.ID, org.Name, org.Email, req.DocumentName,
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
