package generator

import (
	"fmt"
	"time"
)

// TraceSeverity はトレースイベントの重要度。
type TraceSeverity string

const (
	// TraceInfo は通常の処理ステップを示す。
	TraceInfo TraceSeverity = "info"
	// TraceWarn は継続可能な失敗を示す。
	TraceWarn TraceSeverity = "warn"
	// TraceError は終端的な失敗を示す。
	TraceError TraceSeverity = "error"
)

// TraceEvent は生成パイプラインの1ステップの記録。
// パイプラインはすべての結果（Sent/Skipped/Failed）でトレースを返し、
// 呼び出し側が処理経過を観測できるようにする。
type TraceEvent struct {
	Time     time.Time     `json:"time"`
	Step     string        `json:"step"`
	Severity TraceSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// String はトレースイベントを1行のテキストに整形する。
func (e TraceEvent) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Step, e.Message)
}

// traceLog はトレースイベントの蓄積を補助する。
type traceLog struct {
	events []TraceEvent
	now    func() time.Time
}

func newTraceLog(now func() time.Time) *traceLog {
	if now == nil {
		now = time.Now
	}
	return &traceLog{now: now}
}

func (l *traceLog) add(severity TraceSeverity, step, format string, args ...any) {
	l.events = append(l.events, TraceEvent{
		Time:     l.now(),
		Step:     step,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (l *traceLog) info(step, format string, args ...any) {
	l.add(TraceInfo, step, format, args...)
}

func (l *traceLog) warn(step, format string, args ...any) {
	l.add(TraceWarn, step, format, args...)
}

func (l *traceLog) error(step, format string, args ...any) {
	l.add(TraceError, step, format, args...)
}
