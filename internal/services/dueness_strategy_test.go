package services

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestDailyChecker_IsDue(t *testing.T) {
	checker := DailyChecker{}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	startDate := core.NewDate(2026, 1, 1)

	tests := []struct {
		name          string
		lastExecution time.Time
		want          bool
	}{
		{
			name:          "never executed - is due",
			lastExecution: time.Time{},
			want:          true,
		},
		{
			name:          "executed today - not due",
			lastExecution: time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC),
			want:          false,
		},
		{
			name:          "executed yesterday - is due",
			lastExecution: time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC),
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastExecution, now, startDate)
			if got != tt.want {
				t.Errorf("DailyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	startDate := core.NewDate(2026, 1, 1)

	tests := []struct {
		name          string
		lastExecution time.Time
		want          bool
	}{
		{
			name:          "never executed - is due",
			lastExecution: time.Time{},
			want:          true,
		},
		{
			name:          "executed 3 days ago - not due",
			lastExecution: time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC),
			want:          false,
		},
		{
			name:          "executed exactly 7 days ago - is due",
			lastExecution: time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC),
			want:          true,
		},
		{
			name:          "executed 10 days ago - is due",
			lastExecution: time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastExecution, now, startDate)
			if got != tt.want {
				t.Errorf("WeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name          string
		lastExecution time.Time
		now           time.Time
		startDate     core.Date
		want          bool
	}{
		{
			name:          "never executed - is due",
			lastExecution: time.Time{},
			now:           time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2026, 1, 15),
			want:          true,
		},
		{
			name:          "already processed this month - not due",
			lastExecution: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 12, 15),
			want:          false,
		},
		{
			name:          "new month, target day reached - is due",
			lastExecution: time.Date(2025, 12, 15, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 11, 15),
			want:          true,
		},
		{
			name:          "new month, target day not yet reached - not due",
			lastExecution: time.Date(2025, 12, 15, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 11, 15),
			want:          false,
		},
		{
			name:          "target day 31 clamped in February",
			lastExecution: time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 12, 31),
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastExecution, tt.now, tt.startDate)
			if got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker_IsDue(t *testing.T) {
	checker := YearlyChecker{}

	tests := []struct {
		name          string
		lastExecution time.Time
		now           time.Time
		startDate     core.Date
		want          bool
	}{
		{
			name:          "never executed - is due",
			lastExecution: time.Time{},
			now:           time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2026, 6, 15),
			want:          true,
		},
		{
			name:          "already processed this year - not due",
			lastExecution: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 1, 15),
			want:          false,
		},
		{
			name:          "new year, before target month - not due",
			lastExecution: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 6, 15),
			want:          false,
		},
		{
			name:          "new year, target month and day reached - is due",
			lastExecution: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 6, 15),
			want:          true,
		},
		{
			name:          "new year, past target month - is due",
			lastExecution: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			now:           time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			startDate:     core.NewDate(2025, 6, 15),
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastExecution, tt.now, tt.startDate)
			if got != tt.want {
				t.Errorf("YearlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, freq := range []core.Frequency{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetDuenessChecker(freq); err != nil {
			t.Errorf("GetDuenessChecker(%s): %v", freq, err)
		}
	}

	if _, err := GetDuenessChecker("hourly"); err == nil {
		t.Error("expected error for unknown frequency")
	}
}
