package generator

import (
	"testing"
	"time"

	"github.com/hitoshi/newspulse/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(i int) *int              { return &i }

// TestIsDue_Daily は日次配信の経過日数しきい値を検証する。
func TestIsDue_Daily(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastSentAt *time.Time
		wantDue    bool
		wantReason Reason
	}{
		{
			name:       "0.5 days ago is too soon",
			lastSentAt: timePtr(now.Add(-12 * time.Hour)),
			wantDue:    false,
			wantReason: ReasonTooSoon,
		},
		{
			name:       "just under 0.9 days is too soon",
			lastSentAt: timePtr(now.Add(-21*time.Hour - 30*time.Minute)),
			wantDue:    false,
			wantReason: ReasonTooSoon,
		},
		{
			name:       "exactly 0.9 days is due",
			lastSentAt: timePtr(now.Add(-time.Duration(0.9 * 24 * float64(time.Hour)))),
			wantDue:    true,
			wantReason: ReasonDue,
		},
		{
			name:       "one full day is due",
			lastSentAt: timePtr(now.Add(-24 * time.Hour)),
			wantDue:    true,
			wantReason: ReasonDue,
		},
		{
			name:       "never sent is due",
			lastSentAt: nil,
			wantDue:    true,
			wantReason: ReasonDue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, reason := IsDue(tt.lastSentAt, now, model.FrequencyDaily, nil, false)
			if due != tt.wantDue {
				t.Errorf("due = %v, want %v", due, tt.wantDue)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

// TestIsDue_Weekly は週次配信の経過日数と対象曜日の判定を検証する。
func TestIsDue_Weekly(t *testing.T) {
	// 2026-08-28 は金曜日（weekday 5）
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastSentAt *time.Time
		targetDay  *int
		wantDue    bool
		wantReason Reason
	}{
		{
			name:       "5 days ago is too soon regardless of day",
			lastSentAt: timePtr(now.Add(-5 * 24 * time.Hour)),
			targetDay:  intPtr(5),
			wantDue:    false,
			wantReason: ReasonTooSoon,
		},
		{
			name:       "6 days ago on target day is due",
			lastSentAt: timePtr(now.Add(-6 * 24 * time.Hour)),
			targetDay:  intPtr(5),
			wantDue:    true,
			wantReason: ReasonDue,
		},
		{
			name:       "6 days ago on wrong day is not due",
			lastSentAt: timePtr(now.Add(-6 * 24 * time.Hour)),
			targetDay:  intPtr(1),
			wantDue:    false,
			wantReason: ReasonWrongDay,
		},
		{
			name:       "no target day means any day is acceptable",
			lastSentAt: timePtr(now.Add(-7 * 24 * time.Hour)),
			targetDay:  nil,
			wantDue:    true,
			wantReason: ReasonDue,
		},
		{
			name:       "never sent on wrong day is still wrong day",
			lastSentAt: nil,
			targetDay:  intPtr(0),
			wantDue:    false,
			wantReason: ReasonWrongDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, reason := IsDue(tt.lastSentAt, now, model.FrequencyWeekly, tt.targetDay, false)
			if due != tt.wantDue {
				t.Errorf("due = %v, want %v", due, tt.wantDue)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

// TestIsDue_Force は強制フラグがすべての判定を省略することを検証する。
func TestIsDue_Force(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	justNow := now.Add(-time.Minute)

	due, reason := IsDue(&justNow, now, model.FrequencyDaily, nil, true)
	if !due {
		t.Error("due = false, want true with force")
	}
	if reason != ReasonForced {
		t.Errorf("reason = %q, want %q", reason, ReasonForced)
	}

	due, reason = IsDue(&justNow, now, model.FrequencyWeekly, intPtr(0), true)
	if !due {
		t.Error("due = false, want true with force on wrong weekday")
	}
	if reason != ReasonForced {
		t.Errorf("reason = %q, want %q", reason, ReasonForced)
	}
}

// TestEligibilityFloor は重複生成ガードの下限時刻が頻度に応じて変わることを検証する。
func TestEligibilityFloor(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	daily := eligibilityFloor(now, model.FrequencyDaily)
	if got := now.Sub(daily); got != time.Duration(0.9*24*float64(time.Hour)) {
		t.Errorf("daily floor distance = %v, want 21h36m", got)
	}

	weekly := eligibilityFloor(now, model.FrequencyWeekly)
	if got := now.Sub(weekly); got != 6*24*time.Hour {
		t.Errorf("weekly floor distance = %v, want 144h", got)
	}
}
