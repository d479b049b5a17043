// Package calculate includes the route and functionality for Slate image
// analysis.
package calculate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"slate-api/internal/config"
	"slate-api/internal/metrics"
	"slate-api/internal/setup"
	"slate-api/internal/shared"
	"slate-api/internal/validate"
	"slate-api/internal/vision"

	"github.com/labstack/echo/v4"
)

type CalculateManager struct {
	Config *config.Config
	Engine vision.Engine
}

func NewCalculateManager(cfg *config.Config, engine vision.Engine) *CalculateManager {
	return &CalculateManager{Config: cfg, Engine: engine}
}

// Calculate accepts a base64 image plus a variable dictionary, validates the
// image, and returns the evaluated expressions from the vision model. The
// image payload itself never reaches the logs, only its metadata.
func (m *CalculateManager) Calculate(cc echo.Context) error {
	c := cc.(*setup.Context)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.Log.Warnw("Failed to read request body", "error", err.Error())
		return c.JSON(http.StatusBadRequest, shared.ErrorEnvelope(shared.ErrInvalidRequest.Err.Error()))
	}

	var req shared.AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.Log.Warnw("Failed to parse request body", "error", err.Error())
		return c.JSON(http.StatusBadRequest, shared.ErrorEnvelope(shared.ErrInvalidRequest.Err.Error()))
	}

	if req.Image == "" {
		c.Log.Warnw("Request missing image field")
		return c.JSON(http.StatusBadRequest, shared.ErrorEnvelope(shared.ErrMissingImage.Err.Error()))
	}

	img, err := validate.Validate(req.Image, m.Config)
	if err != nil {
		return m.fail(c, err)
	}
	c.Log.Infow("Image accepted",
		"format", img.Format,
		"width", img.Width,
		"height", img.Height,
		"bytes", len(img.Data),
		"variables", len(req.DictOfVars),
	)

	data, mime := validate.Shrink(img, shared.UploadMaxDim)

	ctx, cancel := context.WithTimeout(c.Request().Context(), m.Config.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	results, err := m.Engine.Analyze(ctx, vision.Payload{Data: data, MIME: mime}, req.DictOfVars)
	metrics.ModelCallDuration.WithLabelValues(m.Engine.Name(), m.Engine.Model()).Observe(time.Since(start).Seconds())
	if err != nil {
		return m.fail(c, err)
	}

	metrics.ExpressionsReturned.Observe(float64(len(results)))
	c.Log.Infow("Image processed",
		"expressions", len(results),
		"model", m.Engine.Model(),
		"duration", time.Since(start).Seconds(),
	)
	return c.JSON(http.StatusOK, shared.SuccessEnvelope("Image processed", results))
}

// fail turns a joined pipeline error into the error envelope, feeding the
// rejection counters along the way. Errors without a RequestError in the
// chain fall back to a plain 500.
func (m *CalculateManager) fail(c *setup.Context, err error) error {
	status := http.StatusInternalServerError
	message := shared.ErrInternalServerError.Err.Error()
	var rerr *shared.RequestError
	if errors.As(err, &rerr) {
		status = rerr.StatusCode
		message = rerr.Err.Error()
	}

	var merr *shared.MetricsError
	if errors.As(err, &merr) {
		if status == http.StatusBadRequest {
			metrics.ImagesRejected.WithLabelValues(merr.Code).Inc()
		} else {
			metrics.ModelCallErrors.WithLabelValues(m.Engine.Name(), merr.Code).Inc()
		}
	}

	if status >= http.StatusInternalServerError {
		c.Log.Errorw("Analysis failed", "error", err.Error(), "status", status)
	} else {
		c.Log.Warnw("Image rejected", "error", err.Error(), "status", status)
	}
	return c.JSON(status, shared.ErrorEnvelope(message))
}
