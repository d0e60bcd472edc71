package schedule

import (
	"testing"
	"time"

	"github.com/smorton/sitegate/internal/models"
)

// clockAt builds a time on a fixed week so weekdays are predictable.
// 2024-01-01 is a Monday.
func clockAt(weekday int, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	// Day 0 of the base week is Sunday 2023-12-31.
	return time.Date(2023, 12, 31+weekday, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func TestIsTimeInPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period models.TimePeriod
		at     string
		want   bool
	}{
		{"inside", models.TimePeriod{StartTime: "09:00", EndTime: "17:00"}, "10:30", true},
		{"at start is inside", models.TimePeriod{StartTime: "09:00", EndTime: "17:00"}, "09:00", true},
		{"at end is outside", models.TimePeriod{StartTime: "09:00", EndTime: "17:00"}, "17:00", false},
		{"before", models.TimePeriod{StartTime: "09:00", EndTime: "17:00"}, "08:59", false},
		{"wrap matches late evening", models.TimePeriod{StartTime: "22:00", EndTime: "02:00"}, "23:30", true},
		{"wrap matches early morning", models.TimePeriod{StartTime: "22:00", EndTime: "02:00"}, "01:00", true},
		{"wrap excludes midday", models.TimePeriod{StartTime: "22:00", EndTime: "02:00"}, "12:00", false},
		{"corrupt start never matches", models.TimePeriod{StartTime: "9am", EndTime: "17:00"}, "10:00", false},
		{"corrupt end never matches", models.TimePeriod{StartTime: "09:00", EndTime: "abc"}, "10:00", false},
		{"missing colon never matches", models.TimePeriod{StartTime: "0900", EndTime: "1700"}, "10:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := clockAt(1, tt.at)
			if got := IsTimeInPeriod(tt.period, now); got != tt.want {
				t.Errorf("IsTimeInPeriod(%v, %s) = %v, want %v", tt.period, tt.at, got, tt.want)
			}
		})
	}
}

func TestIsActive(t *testing.T) {
	weekdaySchedule := models.Schedule{
		ID:             "work",
		Name:           "Work hours",
		Enabled:        true,
		Days:           []int{1, 2, 3, 4, 5},
		TimePeriods:    []models.TimePeriod{{StartTime: "09:00", EndTime: "17:00"}},
		BlockedDomains: []string{"example.com"},
	}

	tests := []struct {
		name    string
		mutate  func(models.Schedule) models.Schedule
		weekday int
		at      string
		want    bool
	}{
		{"tuesday in window", nil, 2, "10:00", true},
		{"saturday out of days", nil, 6, "10:00", false},
		{"tuesday after window", nil, 2, "18:00", false},
		{
			"disabled is never active",
			func(s models.Schedule) models.Schedule { s.Enabled = false; return s },
			2, "10:00", false,
		},
		{
			"no periods is never active",
			func(s models.Schedule) models.Schedule { s.TimePeriods = nil; return s },
			2, "10:00", false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := weekdaySchedule
			if tt.mutate != nil {
				s = tt.mutate(s)
			}
			now := clockAt(tt.weekday, tt.at)
			if got := IsActive(s, now); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivePreservesOrder(t *testing.T) {
	a := models.Schedule{ID: "a", Enabled: true, Days: []int{2}, TimePeriods: []models.TimePeriod{{StartTime: "00:00", EndTime: "23:59"}}}
	b := models.Schedule{ID: "b", Enabled: true, Days: []int{2}, TimePeriods: []models.TimePeriod{{StartTime: "00:00", EndTime: "23:59"}}}
	c := models.Schedule{ID: "c", Enabled: false}

	active := Active([]models.Schedule{a, c, b}, clockAt(2, "12:00"))
	if len(active) != 2 || active[0].ID != "a" || active[1].ID != "b" {
		t.Fatalf("Active() = %v, want [a b] in storage order", active)
	}
}

func TestPeriodsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b models.TimePeriod
		want bool
	}{
		{"disjoint", models.TimePeriod{StartTime: "09:00", EndTime: "10:00"}, models.TimePeriod{StartTime: "11:00", EndTime: "12:00"}, false},
		{"touching is disjoint", models.TimePeriod{StartTime: "09:00", EndTime: "10:00"}, models.TimePeriod{StartTime: "10:00", EndTime: "11:00"}, false},
		{"overlapping", models.TimePeriod{StartTime: "09:00", EndTime: "11:00"}, models.TimePeriod{StartTime: "10:00", EndTime: "12:00"}, true},
		{"wrap hits morning period", models.TimePeriod{StartTime: "22:00", EndTime: "02:00"}, models.TimePeriod{StartTime: "01:00", EndTime: "03:00"}, true},
		{"wrap misses midday", models.TimePeriod{StartTime: "22:00", EndTime: "02:00"}, models.TimePeriod{StartTime: "10:00", EndTime: "12:00"}, false},
		{"both wrap", models.TimePeriod{StartTime: "23:00", EndTime: "01:00"}, models.TimePeriod{StartTime: "22:00", EndTime: "02:00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodsOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("PeriodsOverlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := PeriodsOverlap(tt.b, tt.a); got != tt.want {
				t.Errorf("PeriodsOverlap symmetric (%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestValidTimeString(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59", "12:05"}
	invalid := []string{"24:00", "9:30", "12:60", "12-30", "noon", "", "12:3"}

	for _, s := range valid {
		if !ValidTimeString(s) {
			t.Errorf("ValidTimeString(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidTimeString(s) {
			t.Errorf("ValidTimeString(%q) = true, want false", s)
		}
	}
}

func TestValidate(t *testing.T) {
	base := models.Schedule{
		Name:           "Evenings",
		Enabled:        true,
		Days:           []int{0, 6},
		TimePeriods:    []models.TimePeriod{{StartTime: "20:00", EndTime: "23:00"}},
		BlockedDomains: []string{"example.com"},
	}

	tests := []struct {
		name    string
		mutate  func(models.Schedule) models.Schedule
		wantErr bool
	}{
		{"valid", nil, false},
		{"missing name", func(s models.Schedule) models.Schedule { s.Name = " "; return s }, true},
		{"no days", func(s models.Schedule) models.Schedule { s.Days = nil; return s }, true},
		{"day out of range", func(s models.Schedule) models.Schedule { s.Days = []int{7}; return s }, true},
		{"no periods", func(s models.Schedule) models.Schedule { s.TimePeriods = nil; return s }, true},
		{"bad time", func(s models.Schedule) models.Schedule {
			s.TimePeriods = []models.TimePeriod{{StartTime: "8:00", EndTime: "09:00"}}
			return s
		}, true},
		{"overlapping periods", func(s models.Schedule) models.Schedule {
			s.TimePeriods = append(s.TimePeriods, models.TimePeriod{StartTime: "22:00", EndTime: "23:30"})
			return s
		}, true},
		{"no rules", func(s models.Schedule) models.Schedule { s.BlockedDomains = nil; return s }, true},
		{"bare wildcard rejected", func(s models.Schedule) models.Schedule { s.BlockedDomains = []string{"*"}; return s }, true},
		{"keywords alone are enough", func(s models.Schedule) models.Schedule {
			s.BlockedDomains = nil
			s.URLKeywords = []string{"shorts"}
			return s
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			if tt.mutate != nil {
				s = tt.mutate(s)
			}
			err := Validate(s)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
