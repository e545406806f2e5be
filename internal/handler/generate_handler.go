package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/newspulse/internal/generator"
	"github.com/hitoshi/newspulse/internal/model"
)

// GenerationService は生成トリガーハンドラーが必要とするインターフェース。
type GenerationService interface {
	// Generate は1購読の生成パイプラインを実行する。
	Generate(ctx context.Context, subscriptionID string, force bool) (*generator.Result, error)
}

// BatchService はバッチトリガーハンドラーが必要とするインターフェース。
type BatchService interface {
	// RunAll は全購読の生成を実行し、購読ごとの結果を返す。
	RunAll(ctx context.Context) ([]generator.EntityResult, error)
}

// GenerateHandler はニュースレター生成トリガーのHTTPハンドラー。
type GenerateHandler struct {
	generation GenerationService
	batch      BatchService
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(generation GenerationService, batch BatchService) *GenerateHandler {
	return &GenerateHandler{
		generation: generation,
		batch:      batch,
	}
}

// generateRequest は単一生成トリガーリクエストのボディ。
type generateRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Force          bool   `json:"force"`
}

// batchResponse はバッチ生成のレスポンス。
type batchResponse struct {
	Results []generator.EntityResult `json:"results"`
}

// GenerateOne は指定購読のニュースレターを生成する。
// POST /api/newsletters/generate
func (h *GenerateHandler) GenerateOne(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.SubscriptionID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("subscription_id"))
		return
	}

	result, err := h.generation.Generate(r.Context(), req.SubscriptionID, req.Force)
	if err != nil {
		if errors.Is(err, model.ErrSubscriptionNotFound) {
			writeAPIErrorResponse(w, http.StatusNotFound, model.NewSubscriptionNotFoundError(req.SubscriptionID))
			return
		}
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewGenerationFailedError(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GenerateAll は全購読のニュースレターをバッチ生成する。
// 1購読の失敗はその購読の結果に記録され、レスポンス全体は常に200で返る。
// GET /api/newsletters/generate
func (h *GenerateHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.batch.RunAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}
