// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/newspulse/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Upsert はemailをキーにユーザーを作成または更新する。
	// 既存ユーザーの場合はプロフィール属性のみ更新し、IDは維持される。
	// 作成・更新後のユーザーを返す。
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
}

// SubscriptionRepository は購読データの永続化インターフェース。
type SubscriptionRepository interface {
	// FindByID は指定IDの購読を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Subscription, error)

	// FindByIDWithRelations は購読を所有ユーザー・トピック一覧付きで取得する。
	// トピックはposition昇順。見つからない場合はnilを返す。
	FindByIDWithRelations(ctx context.Context, id string) (*model.SubscriptionWithRelations, error)

	// ListAll は全購読をcreated_at昇順で返す。バッチ実行の列挙に使用する。
	ListAll(ctx context.Context) ([]*model.Subscription, error)

	// ListByUserID はユーザーの購読一覧を返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Subscription, error)

	// Create は購読を作成する。
	Create(ctx context.Context, sub *model.Subscription) error

	// Update は購読の配信設定（頻度・曜日・時刻・配信方法）を更新する。
	Update(ctx context.Context, sub *model.Subscription) error

	// ReplaceTopics は購読のトピックを全削除・全再作成で置き換える。
	// 同一トランザクション内で実行し、部分更新は行わない。
	ReplaceTopics(ctx context.Context, subscriptionID string, topics []model.Topic) error
}

// NewsletterRepository はニュースレターデータの永続化インターフェース。
// ニュースレター行は作成後不変であり、更新系の操作は提供しない。
type NewsletterRepository interface {
	// FindByID は指定IDのニュースレターを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Newsletter, error)

	// FindLatestBySubscription は購読の最新ニュースレターを返す。
	// 1件もない場合はnilを返す。
	FindLatestBySubscription(ctx context.Context, subscriptionID string) (*model.Newsletter, error)

	// CreateIfNoneSince はsince以降のニュースレターが存在しない場合のみ行を挿入する。
	// 同一適格期間内の二重生成を防ぐ条件付きINSERT。
	// 挿入された場合はtrueを、既に新しい行があり挿入しなかった場合はfalseを返す。
	CreateIfNoneSince(ctx context.Context, n *model.Newsletter, since time.Time) (bool, error)

	// ListAll は全ニュースレターをsent_at降順で、購読者メールアドレス付きで返す。
	ListAll(ctx context.Context) ([]NewsletterWithSubscriber, error)
}

// FeedbackRepository はフィードバックデータの永続化インターフェース。
type FeedbackRepository interface {
	// Create はフィードバックを作成する。
	Create(ctx context.Context, fb *model.Feedback) error
}

// NewsletterWithSubscriber はニュースレターと購読者情報を結合した構造体。
// アーカイブ一覧表示に使用する。
type NewsletterWithSubscriber struct {
	model.Newsletter
	UserEmail    string
	DeliveryFreq model.Frequency
}
