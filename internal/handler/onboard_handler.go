package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/repository"
)

// OnboardHandler はオンボーディングのHTTPハンドラー。
// ユーザーのUPSERT・購読の更新または作成・トピックの全置換を1リクエストで行う。
type OnboardHandler struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
}

// NewOnboardHandler はOnboardHandlerを生成する。
func NewOnboardHandler(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository) *OnboardHandler {
	return &OnboardHandler{
		userRepo: userRepo,
		subRepo:  subRepo,
	}
}

// onboardRequest はオンボーディングリクエストのボディ。
// Topicsはカンマ区切りのトピック名リスト。
type onboardRequest struct {
	Email          string `json:"email"`
	JobTitle       string `json:"job_title"`
	Industry       string `json:"industry"`
	Topics         string `json:"topics"`
	DeliveryFreq   string `json:"delivery_freq"`
	DeliveryDay    *int   `json:"delivery_day"`
	DeliveryTime   string `json:"delivery_time"`
	DeliveryMethod string `json:"delivery_method"`
}

// onboardResponse はオンボーディング完了のレスポンス。
type onboardResponse struct {
	UserID         string   `json:"user_id"`
	SubscriptionID string   `json:"subscription_id"`
	Topics         []string `json:"topics"`
}

// Onboard はユーザー登録と購読作成を行う。
// 再オンボーディング時は既存ユーザーのプロフィールと既存購読の配信設定を更新し、
// トピックを全置換する。購読が存在しない場合のみ新規作成する。
// POST /api/onboard
func (h *OnboardHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.Email == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("email"))
		return
	}

	topicNames := splitTopics(req.Topics)
	if len(topicNames) == 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("topics"))
		return
	}

	freq := model.Frequency(req.DeliveryFreq)
	if freq == "" {
		freq = model.FrequencyDaily
	}
	if !freq.IsValid() {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidFrequencyError(req.DeliveryFreq))
		return
	}

	user, err := h.userRepo.Upsert(r.Context(), &model.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		JobTitle: req.JobTitle,
		Industry: req.Industry,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 再オンボーディングは既存購読の設定更新として扱う。
	// 購読を増殖させると同一ユーザーに重複ダイジェストが配信されてしまう。
	existing, err := h.subRepo.ListByUserID(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var sub *model.Subscription
	if len(existing) > 0 {
		sub = existing[0]
		sub.DeliveryFreq = freq
		sub.DeliveryDay = req.DeliveryDay
		sub.DeliveryTime = req.DeliveryTime
		sub.DeliveryMethod = req.DeliveryMethod
		sub.UpdatedAt = time.Now()
		if err := h.subRepo.Update(r.Context(), sub); err != nil {
			handleServiceError(w, err)
			return
		}
	} else {
		sub = &model.Subscription{
			ID:             uuid.NewString(),
			UserID:         user.ID,
			DeliveryFreq:   freq,
			DeliveryDay:    req.DeliveryDay,
			DeliveryTime:   req.DeliveryTime,
			DeliveryMethod: req.DeliveryMethod,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if err := h.subRepo.Create(r.Context(), sub); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	topics := make([]model.Topic, len(topicNames))
	for i, name := range topicNames {
		topics[i] = model.Topic{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			Name:           name,
			Position:       i,
		}
	}
	if err := h.subRepo.ReplaceTopics(r.Context(), sub.ID, topics); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, onboardResponse{
		UserID:         user.ID,
		SubscriptionID: sub.ID,
		Topics:         topicNames,
	})
}

// splitTopics はカンマ区切りのトピック文字列を分割・トリムする。
// 空要素は取り除く。
func splitTopics(raw string) []string {
	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	return topics
}
