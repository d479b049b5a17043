// Package routers wires HTTP paths to their handlers.
package routers

import (
	"fmt"

	"slate-api/internal/config"
	"slate-api/internal/vision"
	"slate-api/internal/vision/gemini"
	"slate-api/internal/vision/openrouter"
)

// newEngine picks the vision backend for the configured provider. Exactly one
// engine serves the whole process.
func newEngine(cfg *config.Config) (vision.Engine, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.Model, cfg.UpstreamTimeout), nil
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
}
