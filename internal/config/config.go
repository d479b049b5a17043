// Package config holds the process wide settings object. It is built once in
// main from flags, validated, and passed down read-only; reload requires a
// restart.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slate-api/internal/shared"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	DefaultModel          = "x-ai/grok-2-vision-1212"
	DefaultOpenRouterBase = "https://openrouter.ai/api/v1"
	DefaultMaxImagePixels = 10_000_000
)

type Config struct {
	Host string
	Port string
	Mode string

	Provider          string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	GeminiAPIKey      string
	Model             string

	MaxImagePixels int
	AllowedFormats []string

	UpstreamTimeout time.Duration
	CORSOrigins     []string
	MetricsAPIKey   string
	LogFile         string
}

// Validate applies defaults, canonicalizes the format allow-list, and rejects
// configurations that cannot serve requests.
func (c *Config) Validate() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "8900"
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Mode != "dev" && c.Mode != "prod" {
		return fmt.Errorf("unknown mode %q, expected dev or prod", c.Mode)
	}
	if c.Provider == "" {
		c.Provider = ProviderOpenRouter
	}
	switch c.Provider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return errors.New("openrouter-api-key is required for the openrouter provider")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("gemini-api-key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown provider %q, expected openrouter or gemini", c.Provider)
	}
	if c.OpenRouterBaseURL == "" {
		c.OpenRouterBaseURL = DefaultOpenRouterBase
	}
	c.OpenRouterBaseURL = strings.TrimRight(c.OpenRouterBaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxImagePixels <= 0 {
		c.MaxImagePixels = DefaultMaxImagePixels
	}
	if len(c.AllowedFormats) == 0 {
		c.AllowedFormats = []string{"PNG", "JPEG"}
	}
	for i, f := range c.AllowedFormats {
		c.AllowedFormats[i] = CanonicalFormat(f)
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = shared.DefaultUpstreamTimeout
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	return nil
}

// AllowedFormat reports whether the canonical form of format is in the
// allow-list.
func (c *Config) AllowedFormat(format string) bool {
	format = CanonicalFormat(format)
	for _, f := range c.AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// FormatList renders the allow-list for user facing error messages.
func (c *Config) FormatList() string {
	return strings.Join(c.AllowedFormats, ", ")
}

// CanonicalFormat maps a format or mime subtype to the upper case name the
// raster decoders report, folding the jpg alias into JPEG.
func CanonicalFormat(format string) string {
	format = strings.ToUpper(strings.TrimSpace(format))
	if format == "JPG" {
		format = "JPEG"
	}
	return format
}

// SplitList parses a comma separated flag value, dropping empty entries.
func SplitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
