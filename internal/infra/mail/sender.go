// 注文まわりの通知メール送信
package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

// HTMLメールを1通送り、プロバイダのメッセージIDを返す
type Sender interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// ResendSender は Resend API で送信します。
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}

// RESEND_API_KEY未設定のときはログに出すだけ
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, html string) (string, error) {
	id := "log-" + uuid.NewString()[:8]
	log.Info().Str("to", to).Str("subject", subject).Str("message_id", id).Msg("email not sent (no api key)")
	return id, nil
}
