// Package notify delivers reminder summaries to owners. The core only
// computes what is due; this collaborator handles the actual sending.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"compliance-tracker/internal/repository"
	"compliance-tracker/internal/service"
)

// Telegram pushes reminder summaries to every profile with a configured chat.
type Telegram struct {
	api         *tgbotapi.BotAPI
	profileRepo *repository.ProfileRepository
	reminderSvc *service.ReminderService
}

func NewTelegram(token string, profileRepo *repository.ProfileRepository, reminderSvc *service.ReminderService) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] reminder bot authorized on account %s", api.Self.UserName)

	return &Telegram{
		api:         api,
		profileRepo: profileRepo,
		reminderSvc: reminderSvc,
	}, nil
}

// SendReminders builds and delivers a summary for each owner that has a
// delivery channel and something due. One failing owner does not block the
// rest of the sweep.
func (t *Telegram) SendReminders(ctx context.Context) error {
	profiles, err := t.profileRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, profile := range profiles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if profile.TelegramChatID == 0 {
			continue
		}
		text, err := t.reminderSvc.Summary(ctx, profile.OwnerID, now)
		if err != nil {
			log.Printf("build summary for owner %s: %v", profile.OwnerID, err)
			continue
		}
		if text == "" {
			continue
		}
		if err := t.sendText(profile.TelegramChatID, text); err != nil {
			log.Printf("send summary to %d: %v", profile.TelegramChatID, err)
		}
	}
	return nil
}

func (t *Telegram) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
