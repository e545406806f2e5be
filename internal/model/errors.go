// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, generation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	ErrCodeNewsletterNotFound   = "NEWSLETTER_NOT_FOUND"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidFrequency     = "INVALID_FREQUENCY"
	ErrCodeInvalidRating        = "INVALID_RATING"
	ErrCodeGenerationFailed     = "GENERATION_FAILED"
)

// 生成パイプラインの終端エラー。
// トピック単位・記事単位の上流失敗はトレースに吸収されるため、
// sentinelとして伝播するのは購読未検出と永続化失敗のみ。
var (
	// ErrSubscriptionNotFound は指定IDの購読が存在しないことを示す。
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrPersistenceFailed はニュースレター行の保存に失敗したことを示す。
	ErrPersistenceFailed = errors.New("newsletter persistence failed")
)

// NewSubscriptionNotFoundError は購読未検出エラーを生成する。
func NewSubscriptionNotFoundError(subscriptionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSubscriptionNotFound,
		Message:  fmt.Sprintf("指定された購読が見つかりません: %s", subscriptionID),
		Category: "validation",
		Action:   "購読IDを確認してください。",
	}
}

// NewNewsletterNotFoundError はニュースレター未検出エラーを生成する。
func NewNewsletterNotFoundError(newsletterID string) *APIError {
	return &APIError{
		Code:     ErrCodeNewsletterNotFound,
		Message:  fmt.Sprintf("指定されたニュースレターが見つかりません: %s", newsletterID),
		Category: "validation",
		Action:   "ニュースレターIDを確認してください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須フィールドが指定されていません: %s", field),
		Category: "validation",
		Action:   "リクエストボディの内容を確認してください。",
	}
}

// NewInvalidFrequencyError は無効な配信頻度エラーを生成する。
func NewInvalidFrequencyError(freq string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFrequency,
		Message:  fmt.Sprintf("無効な配信頻度です: %s", freq),
		Category: "validation",
		Action:   "配信頻度には Daily または Weekly を指定してください。",
	}
}

// NewInvalidRatingError は無効な評価値エラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("無効な評価値です: %d", rating),
		Category: "validation",
		Action:   "評価は1から5の整数で指定してください。",
	}
}

// NewGenerationFailedError は生成パイプラインの内部失敗エラーを生成する。
func NewGenerationFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  fmt.Sprintf("ニュースレターの生成に失敗しました: %s", reason),
		Category: "generation",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
