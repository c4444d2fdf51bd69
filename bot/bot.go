package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"attendance-reporter/internal/repository"
	"attendance-reporter/internal/services"
)

var (
	bot          *tgbotapi.BotAPI
	targetChatID int64
	reports      services.ReportGenerator
	recipients   repository.RecipientRepository
	location     = time.Local
)

// Init initializes the Telegram Bot
func Init(token string, authorizedChatIDStr string) error {
	var err error
	bot, err = tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}

	bot.Debug = false
	log.Printf("Authorized on account %s", bot.Self.UserName)

	if authorizedChatIDStr != "" {
		id, err := strconv.ParseInt(authorizedChatIDStr, 10, 64)
		if err == nil {
			targetChatID = id
		}
	}

	return nil
}

// SetReportGenerator sets the service behind the /report command
func SetReportGenerator(gen services.ReportGenerator, loc *time.Location) {
	reports = gen
	if loc != nil {
		location = loc
	}
}

// SetRecipientRepository sets the directory behind the /departments command
func SetRecipientRepository(repo repository.RecipientRepository) {
	recipients = repo
}

// StartPolling starts the update loop
func StartPolling() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
			msg.ParseMode = "Markdown"
			msg.Text = handleCommand(update.Message.Chat.ID, update.Message.Command(), update.Message.CommandArguments())

			if _, err := bot.Send(msg); err != nil {
				log.Printf("Bot send error: %v", err)
			}
		}
	}()
}

// StopPolling stops the update loop
func StopPolling() {
	if bot != nil {
		bot.StopReceivingUpdates()
	}
}

func handleCommand(chatID int64, command, args string) string {
	switch command {
	case "start":
		return "📊 *Отчеты по посещаемости*\n\n" +
			"*Команды:*\n" +
			"/getid - ID чата\n" +
			"/departments - отделы и получатели\n" +
			"/report daily|weekly|monthly - сформировать отчет"

	case "getid":
		return fmt.Sprintf("Chat ID: `%d`", chatID)

	case "departments":
		if !authorized(chatID) {
			return "⛔ Нет доступа"
		}
		return listDepartments()

	case "report":
		if !authorized(chatID) {
			return "⛔ Нет доступа"
		}
		return startReport(chatID, args)

	default:
		return "Неизвестная команда, используйте /start"
	}
}

func authorized(chatID int64) bool {
	return targetChatID != 0 && chatID == targetChatID
}

func listDepartments() string {
	if recipients == nil {
		return "Справочник получателей не настроен"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := recipients.ListRecipients(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	if len(list) == 0 {
		return "Нет получателей"
	}

	var b strings.Builder
	b.WriteString("🏢 *Отделы:*\n")
	for _, r := range list {
		if !r.IsActive {
			continue
		}
		fmt.Fprintf(&b, "- %s → `%s`\n", r.Department, r.Email)
	}
	return b.String()
}

// startReport launches the run in the background and reports the outcome
// to the requesting chat when it finishes.
func startReport(chatID int64, args string) string {
	if reports == nil {
		return "Генерация отчетов не настроена"
	}

	period, err := services.ParsePeriod(args)
	if err != nil {
		return "Usage: `/report daily|weekly|monthly`"
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		summary, err := reports.Generate(ctx, period, time.Now().In(location))
		if err != nil {
			SendMessage(chatID, fmt.Sprintf("❌ Отчет не сформирован: %v", err))
			return
		}
		SendMessage(chatID, FormatSummary(summary))
	}()

	return fmt.Sprintf("⏳ Формирую %s отчет...", period)
}

// FormatSummary renders a run summary for chat
func FormatSummary(s *services.RunSummary) string {
	return fmt.Sprintf("✅ *Отчет %s* `%s`\nОтправлено: %d\nБез данных: %d\nОшибки: %d%s",
		s.Period, s.Label, len(s.Delivered), len(s.Skipped), len(s.Failed), failedList(s.Failed))
}

func failedList(failed []string) string {
	if len(failed) == 0 {
		return ""
	}
	return "\n" + strings.Join(failed, ", ")
}

// SendNotification sends message to admin
func SendNotification(message string) {
	if bot == nil || targetChatID == 0 {
		return
	}
	SendMessage(targetChatID, message)
}

// SendMessage sends to a specific chat
func SendMessage(chatID int64, message string) {
	if bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send to %d: %v", chatID, err)
	}
}
