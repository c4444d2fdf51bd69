// Package services implements business logic for the application
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"attendance-reporter/internal/mailer"
	"attendance-reporter/internal/metrics"
	"attendance-reporter/internal/models"
	"attendance-reporter/internal/pipeline"
	"attendance-reporter/internal/report"
	"attendance-reporter/internal/repository"
)

// ErrRunInProgress is returned when a report run is already executing
var ErrRunInProgress = errors.New("report run already in progress")

// ReportGenerator defines the interface used by triggers (HTTP, bot, scheduler)
type ReportGenerator interface {
	Generate(ctx context.Context, period Period, now time.Time) (*RunSummary, error)
}

// ReportWriter saves report rows and returns the file path
type ReportWriter interface {
	Write(rows []models.ReportRow, department, label string) (string, error)
}

// OperatorNotifier defines the interface for operator alerts
type OperatorNotifier interface {
	SendNotification(message string)
}

// RunSummary describes the outcome of one report run
type RunSummary struct {
	RunID     string
	Period    Period
	Label     string
	Delivered []string
	Skipped   []string
	Failed    []string
}

// ReportService builds and delivers attendance reports for every department
type ReportService struct {
	events     repository.EventSource
	recipients repository.RecipientRepository
	pipeline   *pipeline.Pipeline
	writer     ReportWriter
	sender     mailer.Sender
	notifier   OperatorNotifier
	metrics    *metrics.Metrics

	removeFile func(string) error
	mu         sync.Mutex
}

// NewReportService creates a new report service
func NewReportService(
	events repository.EventSource,
	recipients repository.RecipientRepository,
	p *pipeline.Pipeline,
	writer ReportWriter,
	sender mailer.Sender,
	notifier OperatorNotifier,
	m *metrics.Metrics,
) *ReportService {
	return &ReportService{
		events:     events,
		recipients: recipients,
		pipeline:   p,
		writer:     writer,
		sender:     sender,
		notifier:   notifier,
		metrics:    m,
		removeFile: os.Remove,
	}
}

// Generate runs the report for the window that period covers at now
func (s *ReportService) Generate(ctx context.Context, period Period, now time.Time) (*RunSummary, error) {
	rng, err := RangeFor(period, now)
	if err != nil {
		return nil, err
	}
	return s.GenerateRange(ctx, rng)
}

// GenerateRange runs the report for an explicit date range. Departments are
// processed one after another; a failing department does not stop the others.
func (s *ReportService) GenerateRange(ctx context.Context, rng ReportRange) (*RunSummary, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	started := time.Now()
	summary := &RunSummary{
		RunID:  uuid.NewString(),
		Period: rng.Period,
		Label:  rng.Label,
	}
	tag := summary.RunID[:8]

	log.Printf("[%s] 🚀 Generating %s report for %s", tag, rng.Period, rng.Label)

	recipients, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		s.metrics.Failure("recipients")
		s.alert(fmt.Sprintf("❌ *Не удалось загрузить получателей*\nПериод: `%s`\n`%v`", rng.Label, err))
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	for _, rcpt := range recipients {
		if !rcpt.IsActive {
			continue
		}
		if err := ctx.Err(); err != nil {
			log.Printf("[%s] ⏹️  Run cancelled before %s: %v", tag, rcpt.Department, err)
			return summary, err
		}

		delivered, err := s.processDepartment(ctx, tag, rng, rcpt)
		switch {
		case err != nil:
			summary.Failed = append(summary.Failed, rcpt.Department)
			log.Printf("[%s] ❌ %s: %v", tag, rcpt.Department, err)
			s.alert(fmt.Sprintf("⚠️ *Ошибка отчета*\nОтдел: `%s`\nПериод: `%s`\n`%v`", rcpt.Department, rng.Label, err))
		case delivered:
			summary.Delivered = append(summary.Delivered, rcpt.Department)
			s.metrics.ReportDelivered(string(rng.Period))
		default:
			summary.Skipped = append(summary.Skipped, rcpt.Department)
		}
	}

	s.metrics.RunFinished(string(rng.Period), time.Since(started), len(summary.Failed) == 0, time.Now())
	log.Printf("[%s] ✅ %s report %s done: delivered=%d skipped=%d failed=%d",
		tag, rng.Period, rng.Label, len(summary.Delivered), len(summary.Skipped), len(summary.Failed))
	return summary, nil
}

// processDepartment returns false with a nil error when there is nothing to report
func (s *ReportService) processDepartment(ctx context.Context, tag string, rng ReportRange, rcpt models.Recipient) (bool, error) {
	events, err := s.events.FetchEvents(ctx, rcpt.Department, rng.Start, rng.End)
	if err != nil {
		s.metrics.Failure("fetch")
		return false, err
	}
	if len(events) == 0 {
		log.Printf("[%s] ⚠️  No data for department %s", tag, rcpt.Department)
		return false, nil
	}

	res := s.pipeline.Run(events)
	st := res.Stats
	s.metrics.Events(st.Raw, st.RejectedStatus, st.UnknownCrossing, st.Bounces, st.Intervals)
	log.Printf("[%s] 🧮 %s: raw=%d rejected=%d unknown=%d bounces=%d intervals=%d",
		tag, rcpt.Department, st.Raw, st.RejectedStatus, st.UnknownCrossing, st.Bounces, st.Intervals)

	if len(res.Intervals) == 0 {
		log.Printf("[%s] ⚠️  No intervals for department %s", tag, rcpt.Department)
		return false, nil
	}

	rows := report.BuildRows(res.Intervals, report.LatestIdentity(events))
	path, err := s.writer.Write(rows, rcpt.Department, rng.Label)
	if err != nil {
		s.metrics.Failure("write")
		return false, fmt.Errorf("failed to write report: %w", err)
	}

	subject, body := subjectAndBody(rng, rcpt.Department)
	msg := mailer.Message{
		To:             rcpt.Email,
		Subject:        subject,
		Body:           body,
		AttachmentPath: path,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.Failure("send")
		return false, fmt.Errorf("report kept at %s: %w", path, err)
	}

	if err := s.removeFile(path); err != nil {
		log.Printf("[%s] Warning: failed to remove %s: %v", tag, path, err)
	}
	return true, nil
}

func (s *ReportService) alert(message string) {
	if s.notifier != nil {
		s.notifier.SendNotification(message)
	}
}

var _ ReportGenerator = (*ReportService)(nil)
