// Package search はトピックに対するニュース記事の検索プロバイダを提供する。
// Google Custom Search APIによる実装と、Google News RSSによる実装を含む。
package search

import (
	"context"
	"time"

	"github.com/hitoshi/newspulse/internal/model"
)

// Provider はニュース検索のインターフェース。
// notBefore以降の記事候補を返す。結果は空でありうる。
// 認証情報の欠如やAPI障害はエラーとして返すが、panicは起こさない。
// 呼び出し元（コレクター）はエラーをトレースに記録してループを継続する。
type Provider interface {
	Search(ctx context.Context, topic string, notBefore time.Time) ([]model.SearchResult, error)
}
