package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"attendance-reporter/internal/repository"
	"attendance-reporter/internal/services"
)

type mockGenerator struct {
	done chan services.Period
}

func (m *mockGenerator) Generate(ctx context.Context, period services.Period, now time.Time) (*services.RunSummary, error) {
	m.done <- period
	return &services.RunSummary{Period: period}, nil
}

func withAuthorizedChat(t *testing.T, id int64) {
	prev := targetChatID
	targetChatID = id
	t.Cleanup(func() { targetChatID = prev })
}

func TestHandleCommand(t *testing.T) {
	withAuthorizedChat(t, 100)
	SetRecipientRepository(repository.NewStaticRecipientRepository(map[string]string{"IT": "it@example.com"}))
	t.Cleanup(func() { SetRecipientRepository(nil) })

	tests := []struct {
		name    string
		chatID  int64
		command string
		args    string
		want    string
	}{
		{name: "Start", chatID: 5, command: "start", want: "/report daily|weekly|monthly"},
		{name: "Get ID", chatID: 5, command: "getid", want: "Chat ID: `5`"},
		{name: "Departments unauthorized", chatID: 5, command: "departments", want: "Нет доступа"},
		{name: "Departments", chatID: 100, command: "departments", want: "IT → `it@example.com`"},
		{name: "Report unauthorized", chatID: 5, command: "report", args: "daily", want: "Нет доступа"},
		{name: "Unknown command", chatID: 5, command: "foo", want: "/start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleCommand(tt.chatID, tt.command, tt.args)
			if !strings.Contains(got, tt.want) {
				t.Errorf("handleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
			}
		})
	}
}

func TestReportCommand(t *testing.T) {
	withAuthorizedChat(t, 100)
	gen := &mockGenerator{done: make(chan services.Period, 1)}
	SetReportGenerator(gen, time.UTC)
	t.Cleanup(func() { reports = nil })

	if got := handleCommand(100, "report", "yearly"); !strings.Contains(got, "Usage") {
		t.Errorf("bad period reply = %q", got)
	}

	if got := handleCommand(100, "report", "weekly"); !strings.Contains(got, "weekly") {
		t.Errorf("reply = %q", got)
	}

	select {
	case p := <-gen.done:
		if p != services.PeriodWeekly {
			t.Errorf("period = %v, want weekly", p)
		}
	case <-time.After(time.Second):
		t.Fatal("report was not started")
	}
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(&services.RunSummary{
		Period:    services.PeriodDaily,
		Label:     "2026-02-03",
		Delivered: []string{"IT", "HR"},
		Failed:    []string{"Склад"},
	})

	for _, want := range []string{"daily", "2026-02-03", "Отправлено: 2", "Ошибки: 1", "Склад"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatSummary() = %q, missing %q", got, want)
		}
	}
}

func TestNotifierWithoutBot(t *testing.T) {
	// Must not panic when the bot was never initialized.
	NewNotifier().SendNotification("test")
}
