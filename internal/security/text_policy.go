// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextPolicyService は抽出した記事本文からHTMLマークアップを完全に除去する。
// 記事ページの<p>要素内にはインラインタグやスクリプト断片が残存しうるため、
// bluemondayの全タグ除去ポリシーで平文化してから要約プロンプトに渡す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextPolicyService は記事本文の平文化機能のインターフェースを定義する。
type TextPolicyService interface {
	// PlainText は入力からすべてのHTMLタグを除去した平文を返す。
	// HTMLエンティティはデコードされ、前後の空白は取り除かれる。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	PlainText(raw string) string
}

// textPolicy はTextPolicyServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフに平文化処理を行う。
type textPolicy struct {
	policy *bluemonday.Policy
}

// NewTextPolicy はTextPolicyServiceの新しいインスタンスを生成する。
// StrictPolicyはタグを一切許可せず、すべてのマークアップを除去する。
func NewTextPolicy() *textPolicy {
	return &textPolicy{
		policy: bluemonday.StrictPolicy(),
	}
}

// PlainText は入力からすべてのHTMLタグを除去した平文を返す。
// bluemondayはタグ除去後にエンティティをエスケープした状態で返すため、
// html.UnescapeStringで可読な平文に戻す。
func (p *textPolicy) PlainText(raw string) string {
	if raw == "" {
		return ""
	}

	sanitized := p.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(sanitized))
}

// compile-time interface check
var _ TextPolicyService = (*textPolicy)(nil)
