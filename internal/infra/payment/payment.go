// 外部決済ページ（Stripe）とのやり取り
package payment

import "context"

// ストアが扱う3状態に絞った決済セッションの状態
type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionPaid    SessionStatus = "paid"
	SessionExpired SessionStatus = "expired"
)

// 注文1件分の決済セッション作成リクエスト
type SessionRequest struct {
	OrderID       string
	CartSessionID string
	CustomerEmail string
	Description   string
	AmountMinor   int64 // セント
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string
	URL string
}

// Provider は決済セッションの作成と状態取得を行います。
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
}
