package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MockProvider はStripeキー未設定の開発用です。
// どのセッションもpaidで、success URLへそのまま戻します。
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (MockProvider) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	id := "cs_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	log.Info().Str("order_id", req.OrderID).Int64("amount_minor", req.AmountMinor).Msg("mock payment session")

	return Session{
		ID:  id,
		URL: strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
	}, nil
}

func (MockProvider) GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	return SessionPaid, nil
}
