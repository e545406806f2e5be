// Package generator はニュースレター生成パイプラインを提供する。
//
// 配信判定（DueCheck）・記事収集（Collector）・本文生成（Composer）と、
// それらを束ねて永続化・配信まで行うオーケストレーター（Generator）、
// および全購読を巡回するバッチランナー（BatchRunner）で構成される。
package generator

import (
	"time"

	"github.com/hitoshi/newspulse/internal/model"
)

// Reason は生成結果に付随する機械可読の理由コード。
type Reason string

const (
	// ReasonForced は強制フラグによる配信判定の省略。
	ReasonForced Reason = "forced"
	// ReasonDue は配信期日の到来。
	ReasonDue Reason = "due"
	// ReasonTooSoon は前回配信からの経過不足によるスキップ。
	ReasonTooSoon Reason = "too_soon"
	// ReasonWrongDay は週次配信の対象曜日外によるスキップ。
	ReasonWrongDay Reason = "wrong_day"
	// ReasonNoContent は利用可能な記事ゼロによるスキップ。
	ReasonNoContent Reason = "no_content"
	// ReasonAlreadyGenerated は競合する生成が先行した場合のスキップ。
	ReasonAlreadyGenerated Reason = "already_generated"
)

const (
	// dailyMinDays は日次配信の最小経過日数。
	// 実行時刻の揺らぎで丸1日にわずかに届かないケースを配信対象に含める。
	dailyMinDays = 0.9
	// weeklyMinDays は週次配信の最小経過日数。
	weeklyMinDays = 6.0
)

// dueCheckEpoch は未配信購読の経過日数計算の基準時刻。
// 検索ウィンドウの既定（7日前）とは独立した値であることに注意。
var dueCheckEpoch = time.Unix(0, 0).UTC()

// IsDue は購読が配信期日に達しているかを判定する純粋関数。
// lastSentAtがnilの場合は基準時刻からの経過として扱い、常に期日到来となる。
func IsDue(lastSentAt *time.Time, now time.Time, freq model.Frequency, targetDay *int, force bool) (bool, Reason) {
	if force {
		return true, ReasonForced
	}

	last := dueCheckEpoch
	if lastSentAt != nil {
		last = *lastSentAt
	}

	diffDays := now.Sub(last).Hours() / 24

	switch freq {
	case model.FrequencyWeekly:
		if diffDays < weeklyMinDays {
			return false, ReasonTooSoon
		}
		if targetDay != nil && int(now.Weekday()) != *targetDay {
			return false, ReasonWrongDay
		}
		return true, ReasonDue
	default:
		// Daily
		if diffDays < dailyMinDays {
			return false, ReasonTooSoon
		}
		return true, ReasonDue
	}
}

// eligibilityFloor は配信間隔ガードの下限時刻を返す。
// この時刻より新しいニュースレターが既に存在する場合、生成は重複とみなす。
func eligibilityFloor(now time.Time, freq model.Frequency) time.Time {
	switch freq {
	case model.FrequencyWeekly:
		return now.Add(-time.Duration(weeklyMinDays * 24 * float64(time.Hour)))
	default:
		return now.Add(-time.Duration(dailyMinDays * 24 * float64(time.Hour)))
	}
}
