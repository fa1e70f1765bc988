package server

import (
	"net/http"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/handler"
	"github.com/edupode/mysterybox/internal/repository"

	"github.com/labstack/echo/v4"
)

// RegisterRoutesで載せるハンドラ一式
type Handlers struct {
	Users repository.UserRepository

	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	Cart         *handler.CartHandler
	Coupons      *handler.CouponHandler
	Checkout     *handler.CheckoutHandler
	Orders       *handler.OrderHandler
	AdminOrders  *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	AdminUsers   *handler.AdminUserHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg, h.Users)
	h.Products.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg, h.Users)
	h.Coupons.RegisterRoutes(e, cfg, h.Users)
	h.Checkout.RegisterRoutes(e, cfg, h.Users)
	h.Orders.RegisterRoutes(e, cfg, h.Users)
	h.AdminOrders.RegisterRoutes(e, cfg, h.Users)
	h.AdminProduct.RegisterRoutes(e, cfg, h.Users)
	h.AdminUsers.RegisterRoutes(e)
}
