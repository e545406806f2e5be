// Package model はドメインモデルを定義する。
package model

import "time"

// Frequency はダイジェストの配信頻度を表す。
type Frequency string

const (
	// FrequencyDaily は毎日配信を示す。
	FrequencyDaily Frequency = "Daily"
	// FrequencyWeekly は週次配信を示す。
	FrequencyWeekly Frequency = "Weekly"
)

// IsValid は配信頻度が定義済みの値であることを検証する。
func (f Frequency) IsValid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// User はサービス利用ユーザーを表す。
// プロフィール属性（職種・業界）は要約プロンプトには使用せず、
// オンボーディングフォームの入力をそのまま保持する。
type User struct {
	ID        string
	Email     string
	JobTitle  string
	Industry  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscription はユーザーのダイジェスト購読を表す。
// トピックと配信頻度は購読が所有する（ユーザー直接所有の旧形式は採用しない）。
type Subscription struct {
	ID             string
	UserID         string
	DeliveryFreq   Frequency
	DeliveryDay    *int   // 0-6（日曜=0）。Weeklyのみ意味を持つ
	DeliveryTime   string // 参考情報。パイプラインでは強制しない
	DeliveryMethod string // 参考情報
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Topic は購読に属する検索トピックを表す。
// 再オンボーディング時は全削除・全再作成で置き換えられ、部分更新はしない。
type Topic struct {
	ID             string
	SubscriptionID string
	Name           string
	Position       int
	CreatedAt      time.Time
}

// SubscriptionWithRelations は購読とその所有ユーザー・トピック一覧をまとめた構造体。
// 生成パイプラインの読み込み単位。
type SubscriptionWithRelations struct {
	Subscription
	User   User
	Topics []Topic
}

// Newsletter は生成済みダイジェストを表す。
// 作成後は不変であり、再生成は常に新しい行を作成する。
type Newsletter struct {
	ID             string
	SubscriptionID string
	Content        string
	SentAt         time.Time
}

// Feedback はダイジェストへのユーザー評価を表す。
type Feedback struct {
	ID           string
	NewsletterID string
	Rating       int // 1-5
	Comment      string
	CreatedAt    time.Time
}

// Article は収集した記事の一時表現。
// コレクターが生成しコンポーザーが消費する。永続化はしない。
type Article struct {
	Title string
	Link  string
	Text  string
}

// SearchResult は検索プロバイダが返す記事候補を表す。
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}
