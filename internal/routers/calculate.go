package routers

import (
	"slate-api/internal/config"
	"slate-api/internal/handlers/calculate"

	"github.com/labstack/echo/v4"
)

type CalculateRouter struct {
	cm *calculate.CalculateManager
}

func RegisterCalculateRoutes(e *echo.Group, cfg *config.Config) error {
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	calculateRouter := &CalculateRouter{cm: calculate.NewCalculateManager(cfg, engine)}

	calculateGroup := e.Group("/calculate")
	calculateGroup.POST("", calculateRouter.cm.Calculate)

	return nil
}
