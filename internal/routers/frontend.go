package routers

import (
	"encoding/json"
	"io"
	"net/http"

	"slate-api/internal/setup"
	"slate-api/internal/shared"

	"github.com/labstack/echo/v4"
)

// Root answers browsers and uptime checks poking the base URL.
func Root(cc echo.Context) error {
	c := cc.(*setup.Context)
	return c.JSON(http.StatusOK, map[string]string{"message": "Server is running"})
}

// LogError accepts error reports from the frontend. Reports are logged with
// the request id and the response is always a 200, so a broken client never
// sees its own error reporter fail. Report bodies are not echoed back into
// the logs raw, only the fields we understand.
func LogError(cc echo.Context) error {
	c := cc.(*setup.Context)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.Log.Errorw("Client error report unreadable", "error", err.Error())
		return c.JSON(http.StatusOK, map[string]string{"message": "Error logged"})
	}

	var report shared.ErrorReport
	if err := json.Unmarshal(body, &report); err != nil {
		c.Log.Errorw("Client error report unreadable", "error", err.Error(), "bytes", len(body))
		return c.JSON(http.StatusOK, map[string]string{"message": "Error logged"})
	}

	c.Log.Errorw("Client error report", "error", report.Error, "traceback", report.Traceback)
	return c.JSON(http.StatusOK, map[string]string{"message": "Error logged"})
}

func RegisterFrontendRoutes(e *echo.Group) {
	e.GET("/", Root)
	e.POST("/log-error", LogError)
}
