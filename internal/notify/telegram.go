package notify

import (
	"fmt"
	"log"

	"anglerlog/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AdminAlerter pushes high-signal moderation events (new reports, permanent
// bans) to an admin Telegram chat. It is optional; a nil alerter is safe to
// call.
type AdminAlerter struct {
	BotAPI      *tgbotapi.BotAPI
	AdminChatID int64
}

// NewAdminAlerter creates a new alerter bound to one admin chat.
func NewAdminAlerter(token string, adminChatID int64) (*AdminAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &AdminAlerter{
		BotAPI:      bot,
		AdminChatID: adminChatID,
	}, nil
}

// AlertNewReport notifies the admin chat about a freshly filed report.
func (a *AdminAlerter) AlertNewReport(report *models.Report) {
	if a == nil {
		return
	}
	text := fmt.Sprintf("New report: %s %s\nReason: %s", report.TargetType, report.TargetID, report.Reason)
	a.send(text)
}

// AlertPermanentBan notifies the admin chat that a user was banned.
func (a *AdminAlerter) AlertPermanentBan(userID, reason string) {
	if a == nil {
		return
	}
	a.send(fmt.Sprintf("User %s permanently banned.\nReason: %s", userID, reason))
}

func (a *AdminAlerter) send(text string) {
	msg := tgbotapi.NewMessage(a.AdminChatID, text)
	if _, err := a.BotAPI.Send(msg); err != nil {
		log.Printf("WARNING: Failed to send admin alert: %v", err)
	}
}
