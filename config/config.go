package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Source   SourceConfig
	Pipeline PipelineConfig
	SMTP     SMTPConfig

	// Department -> mailbox, used when PocketBase is not configured
	Recipients map[string]string

	// PocketBase External Server (recipient directory)
	PocketBaseURL   string
	PocketBaseToken string

	// Telegram Bot
	TelegramBotToken string
	AuthorizedChatID string

	HTTPAddr  string
	ReportDir string
	LogFile   string
	Location  *time.Location

	DailySchedule   string
	WeeklySchedule  string
	MonthlySchedule string
}

type DBConfig struct {
	Driver   string // "firebirdsql" or "postgres"
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// SourceConfig names the attendance table and its columns
type SourceConfig struct {
	Table           string
	DateField       string
	TimeField       string
	EmployeeIDField string
	CardIDField     string
	DepartmentField string
	LastNameField   string
	FirstNameField  string
	MiddleNameField string
	ZoneFromField   string
	ZoneToField     string
	EventCodeField  string
	StatusField     string
}

type PipelineConfig struct {
	SuccessStatuses  []int
	InnerZones       []string
	OuterZones       []string
	DebounceWindowMs int
}

type SMTPConfig struct {
	Server   string
	Port     int
	User     string
	Password string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("godotenv.Load() error: %v", err)
	}

	dbPort, err := getenvInt("DB_PORT", 3050)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getenvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	debounce, err := getenvInt("DEBOUNCE_MILLISECONDS", 2000)
	if err != nil {
		return nil, err
	}
	if debounce < 0 {
		return nil, fmt.Errorf("DEBOUNCE_MILLISECONDS must be >= 0, got %d", debounce)
	}
	statuses, err := parseIntList(getenv("SUCCESS_STATUSES", "0"))
	if err != nil {
		return nil, fmt.Errorf("SUCCESS_STATUSES: %w", err)
	}
	recipients, err := ParseRecipients(os.Getenv("RECIPIENTS"))
	if err != nil {
		return nil, fmt.Errorf("RECIPIENTS: %w", err)
	}
	loc, err := time.LoadLocation(getenv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	return &Config{
		DB: DBConfig{
			Driver:   getenv("DB_DRIVER", "firebirdsql"),
			Host:     getenv("DB_HOST", "localhost"),
			Port:     dbPort,
			Database: os.Getenv("DB_NAME"),
			User:     getenv("DB_USER", "SYSDBA"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Source: SourceConfig{
			Table:           getenv("ATTENDANCE_TABLE", "EVENTS"),
			DateField:       getenv("D_FIELD", "D"),
			TimeField:       getenv("T_FIELD", "T"),
			EmployeeIDField: getenv("EMPLOYEE_ID_FIELD", "EMPLOYEE_ID"),
			CardIDField:     getenv("CARD_ID_FIELD", "CARD_ID"),
			DepartmentField: getenv("DEPARTMENT_FIELD", "DEPARTMENT"),
			LastNameField:   getenv("NAME_LAST_FIELD", "NAME_LAST"),
			FirstNameField:  getenv("NAME_FIRST_FIELD", "NAME_FIRST"),
			MiddleNameField: getenv("NAME_MIDDLE_FIELD", "NAME_MIDDLE"),
			ZoneFromField:   getenv("ZONE_FROM_FIELD", "ZONE_FROM"),
			ZoneToField:     getenv("ZONE_TO_FIELD", "ZONE_TO"),
			EventCodeField:  getenv("EVENT_CODE_FIELD", "EVENT_CODE"),
			StatusField:     getenv("STATUS_FIELD", "STATUS"),
		},
		Pipeline: PipelineConfig{
			SuccessStatuses:  statuses,
			InnerZones:       parseList(os.Getenv("INNER_ZONE_NAMES")),
			OuterZones:       parseList(os.Getenv("OUTER_ZONE_NAMES")),
			DebounceWindowMs: debounce,
		},
		SMTP: SMTPConfig{
			Server:   os.Getenv("SMTP_SERVER"),
			Port:     smtpPort,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		Recipients:       recipients,
		PocketBaseURL:    os.Getenv("POCKETBASE_URL"),
		PocketBaseToken:  os.Getenv("POCKETBASE_TOKEN"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		ReportDir:        getenv("REPORT_DIR", "."),
		LogFile:          getenv("LOG_FILE", "attendance_reporter.log"),
		Location:         loc,
		DailySchedule:    getenv("DAILY_SCHEDULE", "0 8 * * *"),
		WeeklySchedule:   getenv("WEEKLY_SCHEDULE", "0 8 * * 1"),
		MonthlySchedule:  getenv("MONTHLY_SCHEDULE", "5 8 1 * *"),
	}, nil
}

// ParseRecipients parses "Dept=mail@host;Other Dept=x@host" into a map
func ParseRecipients(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		dept, email, found := strings.Cut(pair, "=")
		dept, email = strings.TrimSpace(dept), strings.TrimSpace(email)
		if !found || dept == "" || email == "" {
			return nil, fmt.Errorf("invalid entry %q, want Department=email", pair)
		}
		out[dept] = email
	}
	return out, nil
}

func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, item := range parseList(s) {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q: %w", item, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, v, err)
	}
	return n, nil
}
