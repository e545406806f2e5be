package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newspulse/internal/model"
)

// PostgresFeedbackRepo はPostgreSQLを使用したフィードバックリポジトリ。
type PostgresFeedbackRepo struct {
	db *sql.DB
}

// NewPostgresFeedbackRepo はPostgresFeedbackRepoを生成する。
func NewPostgresFeedbackRepo(db *sql.DB) *PostgresFeedbackRepo {
	return &PostgresFeedbackRepo{db: db}
}

// Create はフィードバックを作成する。
func (r *PostgresFeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedbacks (id, newsletter_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		fb.ID, fb.NewsletterID, fb.Rating, fb.Comment,
	)
	if err != nil {
		return fmt.Errorf("フィードバックの作成に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FeedbackRepository = (*PostgresFeedbackRepo)(nil)
