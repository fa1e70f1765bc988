package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// カートをいつ空にするか
type ClearCartOn string

const (
	// 注文作成時（決済前）に空にする
	ClearCartOnOrderCreated ClearCartOn = "order_created"
	// 決済確認後に空にする
	ClearCartOnPaymentConfirmed ClearCartOn = "payment_confirmed"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development/production

	DB     DatabaseConfig
	Redis  RedisConfig
	Stripe StripeConfig
	Mail   MailConfig
	Store  StoreConfig

	JWTSecret string // JWT署名シークレット
}

// DB接続
type DatabaseConfig struct {
	URL      string // DATABASE_URLがあれば最優先
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Redis（空ならキャッシュ無効）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// 決済（Stripe Checkout）
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// メール送信（Resend）
type MailConfig struct {
	APIKey string
	From   string
}

// ストアの業務設定
type StoreConfig struct {
	FrontendURL            string
	ClearCartOn            ClearCartOn
	StrictOrderTransitions bool
}

// 本番かどうか
func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Loadは環境変数
func Load() (Config, error) {
	// .envが無くてもエラーにしない（本番は環境変数だけ）
	_ = godotenv.Load()

	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiDefault("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	strict, err := boolDefault("STRICT_ORDER_TRANSITIONS", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "development"),

		DB: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     pgPort,
			User:     getenv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     getenv("POSTGRES_DB", "mysterybox"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			Currency:  strings.ToLower(getenv("STRIPE_CURRENCY", "eur")),
		},
		Mail: MailConfig{
			APIKey: os.Getenv("RESEND_API_KEY"),
			From:   getenv("MAIL_FROM", "Mystery Box <encomendas@mysterybox.pt>"),
		},
		Store: StoreConfig{
			FrontendURL:            strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
			ClearCartOn:            ClearCartOn(getenv("CLEAR_CART_ON", string(ClearCartOnOrderCreated))),
			StrictOrderTransitions: strict,
		},

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DB.URL == "" && cfg.DB.Password == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	switch cfg.Store.ClearCartOn {
	case ClearCartOnOrderCreated, ClearCartOnPaymentConfirmed:
	default:
		return Config{}, fmt.Errorf("CLEAR_CART_ON must be %q or %q", ClearCartOnOrderCreated, ClearCartOnPaymentConfirmed)
	}
	if cfg.IsProduction() && cfg.Stripe.SecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
