// Package openrouter relays analysis calls through the OpenRouter
// chat-completions API, the hosted front for the vision models this service
// defaults to.
package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slate-api/internal/shared"
	"slate-api/internal/vision"
)

const (
	// App attribution headers OpenRouter uses for rankings.
	refererHeader = "http://localhost:8900"
	titleHeader   = "Slate Calculator"

	// Replies are a short JSON array; anything past this is not worth reading.
	maxResponseBytes = 1 << 20
)

type Engine struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
}

func New(apiKey, baseURL, model string, timeout time.Duration) *Engine {
	return &Engine{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (e *Engine) Name() string { return "openrouter" }

func (e *Engine) Model() string { return e.model }

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *responseError `json:"error"`
}

// responseError is the body-level error object OpenRouter can attach even to
// an HTTP 200. Code arrives as a number or a string depending on the path
// that failed.
type responseError struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

// Analyze sends the image and instruction upstream once and parses the reply.
// Failures classify by transport, status, and body shape; none are retried.
func (e *Engine) Analyze(ctx context.Context, img vision.Payload, vars map[string]string) ([]shared.ExpressionResult, error) {
	dataURL := "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	payload, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: vision.BuildPrompt(vars)},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		MaxTokens: shared.DefaultMaxTokens,
	})
	if err != nil {
		return nil, errors.Join(shared.ErrInternalServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Join(shared.ErrInternalServerError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("HTTP-Referer", refererHeader)
	req.Header.Set("X-Title", titleHeader)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model is unreachable")},
			shared.ErrModelUnreachable,
			err,
		)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Failed to read model response")},
			shared.ErrModelUnreachable,
			err,
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, raw)
	}

	var body chatResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Failed to parse model response")},
			shared.ErrModelReply,
			err,
		)
	}
	if body.Error != nil && body.Error.Message != "" {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model returned an error")},
			shared.ErrModelStatus,
			fmt.Errorf("model error [%s]: %s", body.Error.Code, body.Error.Message),
		)
	}
	if len(body.Choices) == 0 {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Invalid response format from model")},
			shared.ErrModelReply,
			errors.New("no choices in response"),
		)
	}
	content := strings.TrimSpace(body.Choices[0].Message.Content)
	if content == "" {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Invalid response format from model")},
			shared.ErrModelReply,
			errors.New("empty content in response"),
		)
	}

	return vision.ParseReply(content)
}

func classifyStatus(status int, body []byte) error {
	detail := fmt.Errorf("model returned status %d: %s", status, snippet(body))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model rejected the configured credentials")},
			shared.ErrModelAuth,
			detail,
		)
	case status == http.StatusTooManyRequests:
		return errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model rate limited the request")},
			shared.ErrModelRateLimited,
			detail,
		)
	default:
		return errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model request failed")},
			shared.ErrModelStatus,
			detail,
		)
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
