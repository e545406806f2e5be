// Package mail はニュースレターのSMTP配信を提供する。
//
// SMTP認証情報が未設定の環境では配信を行わず、件名と本文長のみを
// ログに記録する縮退モードで動作する。縮退モードはエラーではなく、
// 配信フラグfalseとして呼び出し側に伝わる。
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Mailer はニュースレター配信のインターフェースを定義する。
type Mailer interface {
	// Send はHTMLメールを送信する。
	// 実際に配信された場合はdelivered=trueを返す。
	// 認証情報未設定による縮退モードではdelivered=false, err=nilを返す。
	Send(ctx context.Context, to, subject, htmlBody string) (delivered bool, err error)
}

// SMTPMailer はSMTP経由でメールを送信するMailerの実装。
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *slog.Logger
}

// NewSMTPMailer はSMTPMailerの新しいインスタンスを生成する。
// host・username・passwordのいずれかが空の場合、縮退モードで動作する。
func NewSMTPMailer(host string, port int, username, password, from string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// configured はSMTP配信に必要な設定が揃っているかを返す。
func (m *SMTPMailer) configured() bool {
	return m.host != "" && m.username != "" && m.password != ""
}

// Send はHTMLメールを送信する。
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) (bool, error) {
	if !m.configured() {
		m.logger.Info("SMTP未設定のためメールをログのみに記録します",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.Int("body_length", len(htmlBody)),
		)
		return false, nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return false, fmt.Errorf("送信元アドレスの設定に失敗しました: %w", err)
	}
	if err := msg.To(to); err != nil {
		return false, fmt.Errorf("宛先アドレスの設定に失敗しました: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(m.host,
		gomail.WithPort(m.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.username),
		gomail.WithPassword(m.password),
	)
	if err != nil {
		return false, fmt.Errorf("SMTPクライアントの作成に失敗しました: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return false, fmt.Errorf("メール送信に失敗しました: %w", err)
	}

	m.logger.Info("メールを送信しました",
		slog.String("to", to),
		slog.String("subject", subject),
	)

	return true, nil
}

// compile-time interface check
var _ Mailer = (*SMTPMailer)(nil)
