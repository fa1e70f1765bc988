package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edupode/mysterybox/internal/infra/payment"

	"github.com/rs/zerolog/log"
)

// 決済ステータスの鮮度の上限
const PaymentStatusTTL = 10 * time.Second

// PaymentStatusCache は決済セッションごとの最新ステータスを保持します。
// ステータス画面のポーリングで毎回Stripeを叩かないためのものです。
type PaymentStatusCache struct {
	redis *RedisClient
	ttl   time.Duration
}

func NewPaymentStatusCache(redis *RedisClient) *PaymentStatusCache {
	return &PaymentStatusCache{redis: redis, ttl: PaymentStatusTTL}
}

func paymentStatusKey(sessionID string) string {
	return fmt.Sprintf("payment:status:%s", sessionID)
}

// ミスでもRedis障害でもfalse（障害時はwarnを出してプロバイダに問い合わせる）
func (c *PaymentStatusCache) Get(ctx context.Context, sessionID string) (payment.SessionStatus, bool) {
	v, err := c.redis.Get(ctx, paymentStatusKey(sessionID))
	if errors.Is(err, ErrMiss) {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("payment status cache read failed")
		return "", false
	}
	return payment.SessionStatus(v), true
}

// paidは終端なのでキャッシュしない（注文行が正）
func (c *PaymentStatusCache) Set(ctx context.Context, sessionID string, status payment.SessionStatus) error {
	if status == payment.SessionPaid {
		return nil
	}
	return c.redis.Set(ctx, paymentStatusKey(sessionID), string(status), c.ttl)
}
