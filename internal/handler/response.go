package handler

import (
	"net/http"
	"strings"

	"github.com/edupode/mysterybox/internal/middleware"
	"github.com/edupode/mysterybox/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カートセッションIDを運ぶヘッダ
const HeaderSessionID = "X-Session-ID"

type ErrorResponse struct {
	Error string `json:"error"`
}

// { message: string }
type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// AuthJWTが入れたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// ゲストならnil
func optionalUserID(c echo.Context) *int64 {
	id, ok := getUserIDFromContext(c)
	if !ok {
		return nil
	}
	return &id
}

func sessionID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(HeaderSessionID))
}
