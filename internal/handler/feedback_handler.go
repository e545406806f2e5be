package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/repository"
)

// FeedbackHandler はニュースレター評価のHTTPハンドラー。
type FeedbackHandler struct {
	feedbackRepo   repository.FeedbackRepository
	newsletterRepo repository.NewsletterRepository
}

// NewFeedbackHandler はFeedbackHandlerを生成する。
func NewFeedbackHandler(feedbackRepo repository.FeedbackRepository, newsletterRepo repository.NewsletterRepository) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackRepo:   feedbackRepo,
		newsletterRepo: newsletterRepo,
	}
}

// feedbackRequest はフィードバック投稿リクエストのボディ。
type feedbackRequest struct {
	NewsletterID string `json:"newsletter_id"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// feedbackResponse はフィードバック投稿完了のレスポンス。
type feedbackResponse struct {
	ID string `json:"id"`
}

// Create はニュースレターへの評価を登録する。
// POST /api/feedback
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.NewsletterID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("newsletter_id"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRatingError(req.Rating))
		return
	}

	newsletter, err := h.newsletterRepo.FindByID(r.Context(), req.NewsletterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if newsletter == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNewsletterNotFoundError(req.NewsletterID))
		return
	}

	feedback := &model.Feedback{
		ID:           uuid.NewString(),
		NewsletterID: req.NewsletterID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    time.Now(),
	}
	if err := h.feedbackRepo.Create(r.Context(), feedback); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, feedbackResponse{ID: feedback.ID})
}
