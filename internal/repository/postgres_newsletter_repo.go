package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/newspulse/internal/model"
)

// PostgresNewsletterRepo はPostgreSQLを使用したニュースレターリポジトリ。
type PostgresNewsletterRepo struct {
	db *sql.DB
}

// NewPostgresNewsletterRepo はPostgresNewsletterRepoを生成する。
func NewPostgresNewsletterRepo(db *sql.DB) *PostgresNewsletterRepo {
	return &PostgresNewsletterRepo{db: db}
}

// FindByID は指定IDのニュースレターを取得する。見つからない場合はnilを返す。
func (r *PostgresNewsletterRepo) FindByID(ctx context.Context, id string) (*model.Newsletter, error) {
	n := &model.Newsletter{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subscription_id, content, sent_at
		 FROM newsletters WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.SubscriptionID, &n.Content, &n.SentAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ニュースレターの取得に失敗しました: %w", err)
	}

	return n, nil
}

// FindLatestBySubscription は購読の最新ニュースレターを返す。
// 1件もない場合はnilを返す。
func (r *PostgresNewsletterRepo) FindLatestBySubscription(ctx context.Context, subscriptionID string) (*model.Newsletter, error) {
	n := &model.Newsletter{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subscription_id, content, sent_at
		 FROM newsletters WHERE subscription_id = $1
		 ORDER BY sent_at DESC LIMIT 1`,
		subscriptionID,
	).Scan(&n.ID, &n.SubscriptionID, &n.Content, &n.SentAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("最新ニュースレターの取得に失敗しました: %w", err)
	}

	return n, nil
}

// CreateIfNoneSince はsince以降のニュースレターが存在しない場合のみ行を挿入する。
// INSERT ... WHERE NOT EXISTS による条件付きINSERTで、同一適格期間内に
// 並行する2つの生成実行が両方とも行を挿入することを防ぐ。
// 挿入された場合はtrueを、既に新しい行があり挿入しなかった場合はfalseを返す。
func (r *PostgresNewsletterRepo) CreateIfNoneSince(ctx context.Context, n *model.Newsletter, since time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO newsletters (id, subscription_id, content, sent_at)
		 SELECT $1, $2, $3, $4
		 WHERE NOT EXISTS (
		     SELECT 1 FROM newsletters
		     WHERE subscription_id = $2 AND sent_at > $5
		 )`,
		n.ID, n.SubscriptionID, n.Content, n.SentAt, since,
	)
	if err != nil {
		return false, fmt.Errorf("ニュースレターの条件付き作成に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("挿入結果の取得に失敗しました: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListAll は全ニュースレターをsent_at降順で、購読者メールアドレス付きで返す。
func (r *PostgresNewsletterRepo) ListAll(ctx context.Context) ([]NewsletterWithSubscriber, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.subscription_id, n.content, n.sent_at, u.email, s.delivery_freq
		 FROM newsletters n
		 JOIN subscriptions s ON n.subscription_id = s.id
		 JOIN users u ON s.user_id = u.id
		 ORDER BY n.sent_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []NewsletterWithSubscriber
	for rows.Next() {
		var info NewsletterWithSubscriber
		if err := rows.Scan(&info.ID, &info.SubscriptionID, &info.Content, &info.SentAt, &info.UserEmail, &info.DeliveryFreq); err != nil {
			return nil, fmt.Errorf("ニュースレター行の読み取りに失敗しました: %w", err)
		}
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の走査に失敗しました: %w", err)
	}
	return results, nil
}

// compile-time interface check
var _ NewsletterRepository = (*PostgresNewsletterRepo)(nil)
