package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/newspulse/internal/model"
)

// PostgresSubscriptionRepo はPostgreSQLを使用した購読リポジトリ。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// FindByID は指定IDの購読を取得する。見つからない場合はnilを返す。
func (r *PostgresSubscriptionRepo) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	sub := &model.Subscription{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, delivery_freq, delivery_day, delivery_time, delivery_method, created_at, updated_at
		 FROM subscriptions WHERE id = $1`,
		id,
	).Scan(&sub.ID, &sub.UserID, &sub.DeliveryFreq, &sub.DeliveryDay, &sub.DeliveryTime, &sub.DeliveryMethod, &sub.CreatedAt, &sub.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("購読の取得に失敗しました: %w", err)
	}

	return sub, nil
}

// FindByIDWithRelations は購読を所有ユーザー・トピック一覧付きで取得する。
// トピックはposition昇順。見つからない場合はnilを返す。
func (r *PostgresSubscriptionRepo) FindByIDWithRelations(ctx context.Context, id string) (*model.SubscriptionWithRelations, error) {
	rel := &model.SubscriptionWithRelations{}
	err := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.delivery_freq, s.delivery_day, s.delivery_time, s.delivery_method,
		        s.created_at, s.updated_at,
		        u.id, u.email, u.job_title, u.industry, u.created_at, u.updated_at
		 FROM subscriptions s
		 JOIN users u ON s.user_id = u.id
		 WHERE s.id = $1`,
		id,
	).Scan(
		&rel.ID, &rel.UserID, &rel.DeliveryFreq, &rel.DeliveryDay, &rel.DeliveryTime, &rel.DeliveryMethod,
		&rel.CreatedAt, &rel.UpdatedAt,
		&rel.User.ID, &rel.User.Email, &rel.User.JobTitle, &rel.User.Industry, &rel.User.CreatedAt, &rel.User.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("購読（関連付き）の取得に失敗しました: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, subscription_id, name, position, created_at
		 FROM topics WHERE subscription_id = $1 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("トピック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var topic model.Topic
		if err := rows.Scan(&topic.ID, &topic.SubscriptionID, &topic.Name, &topic.Position, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("トピック行の読み取りに失敗しました: %w", err)
		}
		rel.Topics = append(rel.Topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("トピック一覧の走査に失敗しました: %w", err)
	}

	return rel, nil
}

// ListAll は全購読をcreated_at昇順で返す。バッチ実行の列挙に使用する。
func (r *PostgresSubscriptionRepo) ListAll(ctx context.Context) ([]*model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, delivery_freq, delivery_day, delivery_time, delivery_method, created_at, updated_at
		 FROM subscriptions ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("購読一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// ListByUserID はユーザーの購読一覧を返す。
func (r *PostgresSubscriptionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, delivery_freq, delivery_day, delivery_time, delivery_method, created_at, updated_at
		 FROM subscriptions WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの購読一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// Create は購読を作成する。
func (r *PostgresSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_id, delivery_freq, delivery_day, delivery_time, delivery_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`,
		sub.ID, sub.UserID, sub.DeliveryFreq, sub.DeliveryDay, sub.DeliveryTime, sub.DeliveryMethod,
	)
	if err != nil {
		return fmt.Errorf("購読の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は購読の配信設定（頻度・曜日・時刻・配信方法）を更新する。
func (r *PostgresSubscriptionRepo) Update(ctx context.Context, sub *model.Subscription) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions
		 SET delivery_freq = $2, delivery_day = $3, delivery_time = $4, delivery_method = $5, updated_at = NOW()
		 WHERE id = $1`,
		sub.ID, sub.DeliveryFreq, sub.DeliveryDay, sub.DeliveryTime, sub.DeliveryMethod,
	)
	if err != nil {
		return fmt.Errorf("購読の更新に失敗しました: %w", err)
	}
	return nil
}

// ReplaceTopics は購読のトピックを全削除・全再作成で置き換える。
// 同一トランザクション内で実行し、部分更新は行わない。
func (r *PostgresSubscriptionRepo) ReplaceTopics(ctx context.Context, subscriptionID string, topics []model.Topic) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM topics WHERE subscription_id = $1`,
		subscriptionID,
	); err != nil {
		return fmt.Errorf("既存トピックの削除に失敗しました: %w", err)
	}

	for i, topic := range topics {
		id := topic.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topics (id, subscription_id, name, position, created_at)
			 VALUES ($1, $2, $3, $4, NOW())`,
			id, subscriptionID, topic.Name, i,
		); err != nil {
			return fmt.Errorf("トピックの作成に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トピック置き換えのコミットに失敗しました: %w", err)
	}
	return nil
}

// scanSubscriptions は購読行の集合を読み取る。
func scanSubscriptions(rows *sql.Rows) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	for rows.Next() {
		sub := &model.Subscription{}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.DeliveryFreq, &sub.DeliveryDay, &sub.DeliveryTime, &sub.DeliveryMethod, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("購読行の読み取りに失敗しました: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("購読一覧の走査に失敗しました: %w", err)
	}
	return subs, nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)
