package repository_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/edupode/mysterybox/internal/domain/model"
	"github.com/edupode/mysterybox/internal/infra/db"
	infraRepo "github.com/edupode/mysterybox/internal/infra/repository"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// マイグレーションはパッケージで1回だけ（専用の接続で流して閉じる）
func migrateTestDB(dsn string) error {
	migrateOnce.Do(func() {
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			migrateErr = err
			return
		}
		defer sqlDB.Close()
		migrateErr = db.RunMigrations(sqlDB, "../../../migrations")
	})
	return migrateErr
}

// TEST_DATABASE_URLが無ければDBテストはスキップ
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, migrateTestDB(dsn))

	sqlDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB
}

func createProduct(t *testing.T, gdb *gorm.DB) model.Product {
	t.Helper()

	p, err := infraRepo.NewProductGormRepository(gdb).Create(context.Background(), model.Product{
		Name:     "Test Box",
		Category: "tech",
		Price:    20,
		IsActive: true,
	})
	require.NoError(t, err)
	return p
}

func createCart(t *testing.T, gdb *gorm.DB) model.Cart {
	t.Helper()

	cart, err := infraRepo.NewCartGormRepository(gdb).GetOrCreateBySessionID(context.Background(), "sess-"+uuid.NewString(), nil)
	require.NoError(t, err)
	return cart
}

// コードは毎回ユニークにする
func createCoupon(t *testing.T, gdb *gorm.DB, maxUses *int64) model.Coupon {
	t.Helper()

	now := time.Now()
	c, err := infraRepo.NewCouponGormRepository(gdb).Create(context.Background(), model.Coupon{
		Code:          "T" + uuid.NewString()[:8],
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 10,
		MaxUses:       maxUses,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(time.Hour),
		IsActive:      true,
	})
	require.NoError(t, err)
	return c
}

func createPendingOrder(t *testing.T, gdb *gorm.DB) model.Order {
	t.Helper()

	sessionID := "cs_test_" + uuid.NewString()
	o := model.Order{
		ID:               uuid.NewString(),
		SessionID:        "sess-" + uuid.NewString(),
		CustomerEmail:    "cliente@example.pt",
		Subtotal:         40,
		VATAmount:        9.2,
		ShippingCost:     4.99,
		TotalAmount:      54.19,
		ShippingAddress:  "Rua Augusta 1, Lisboa",
		Phone:            "912345678",
		PaymentMethod:    model.PaymentMethodStripe,
		ShippingMethod:   "standard",
		PaymentStatus:    model.PaymentStatusPending,
		OrderStatus:      model.OrderStatusPending,
		PaymentSessionID: &sessionID,
	}
	require.NoError(t, infraRepo.NewOrderGormRepository(gdb).Create(context.Background(), o))
	return o
}

func ptrInt64(v int64) *int64 { return &v }
