package scheduler

import (
	"context"
	"testing"
	"time"

	"attendance-reporter/internal/services"
)

type mockGenerator struct {
	calls   []services.Period
	lastNow time.Time
	err     error
}

func (m *mockGenerator) Generate(ctx context.Context, period services.Period, now time.Time) (*services.RunSummary, error) {
	m.calls = append(m.calls, period)
	m.lastNow = now
	if _, ok := ctx.Deadline(); !ok {
		return nil, context.DeadlineExceeded
	}
	return &services.RunSummary{Period: period}, m.err
}

var _ services.ReportGenerator = (*mockGenerator)(nil)

func TestJobPassesClockToGenerator(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	gen := &mockGenerator{}
	s := New(gen, loc)
	fixed := time.Date(2026, 3, 1, 5, 5, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.job(services.PeriodMonthly)()

	if len(gen.calls) != 1 || gen.calls[0] != services.PeriodMonthly {
		t.Fatalf("Generate calls = %v, want [monthly]", gen.calls)
	}
	if !gen.lastNow.Equal(fixed) || gen.lastNow.Location() != loc {
		t.Errorf("now = %v, want %v in %v", gen.lastNow, fixed, loc)
	}
}

func TestJobSurvivesRunInProgress(t *testing.T) {
	gen := &mockGenerator{err: services.ErrRunInProgress}
	s := New(gen, time.UTC)

	s.job(services.PeriodDaily)()

	if len(gen.calls) != 1 {
		t.Errorf("Generate calls = %d, want 1", len(gen.calls))
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "Daily at eight", spec: "0 8 * * *"},
		{name: "Mondays", spec: "0 8 * * 1"},
		{name: "First of month", spec: "5 8 1 * *"},
		{name: "Descriptor", spec: "@daily"},
		{name: "Garbage", spec: "every day", wantErr: true},
		{name: "Six fields", spec: "0 0 8 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&mockGenerator{}, time.UTC)
			err := s.Register(tt.spec, services.PeriodDaily)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	s := New(&mockGenerator{}, time.UTC)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
