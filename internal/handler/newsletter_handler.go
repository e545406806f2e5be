package handler

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/repository"
)

// previewLength はアーカイブ一覧に含める本文プレビューの最大文字数。
const previewLength = 200

// NewsletterHandler はニュースレターアーカイブのHTTPハンドラー。
type NewsletterHandler struct {
	newsletterRepo repository.NewsletterRepository
}

// NewNewsletterHandler はNewsletterHandlerを生成する。
func NewNewsletterHandler(newsletterRepo repository.NewsletterRepository) *NewsletterHandler {
	return &NewsletterHandler{newsletterRepo: newsletterRepo}
}

// newsletterListItem はアーカイブ一覧の1件を表す。
type newsletterListItem struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DeliveryFreq string    `json:"delivery_freq"`
	SentAt       time.Time `json:"sent_at"`
	Preview      string    `json:"preview"`
}

// newsletterDetail はニュースレター詳細のレスポンス。
// Contentは生成時のマークアップをそのまま返す（信頼済みコンテンツ）。
type newsletterDetail struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
}

// List はニュースレターアーカイブの一覧を返す。
// GET /api/newsletters
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	newsletters, err := h.newsletterRepo.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]newsletterListItem, 0, len(newsletters))
	for _, n := range newsletters {
		items = append(items, newsletterListItem{
			ID:           n.ID,
			Email:        n.UserEmail,
			DeliveryFreq: string(n.DeliveryFreq),
			SentAt:       n.SentAt,
			Preview:      truncateRunes(n.Content, previewLength),
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// Get は指定IDのニュースレターを全文で返す。
// GET /api/newsletters/{id}
func (h *NewsletterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	newsletter, err := h.newsletterRepo.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if newsletter == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewNewsletterNotFoundError(id))
		return
	}

	writeJSON(w, http.StatusOK, newsletterDetail{
		ID:             newsletter.ID,
		SubscriptionID: newsletter.SubscriptionID,
		Content:        newsletter.Content,
		SentAt:         newsletter.SentAt,
	})
}

// truncateRunes は文字列をルーン単位で最大n文字に切り詰める。
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
