// Package gemini runs analysis through Google's Gemini models, for
// deployments keyed to that provider instead of OpenRouter.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"slate-api/internal/shared"
	"slate-api/internal/vision"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Engine struct {
	apiKey string
	model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{apiKey: strings.TrimSpace(apiKey), model: strings.TrimSpace(model)}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) Model() string { return e.model }

// Analyze sends the image and instruction through the Gemini SDK once. The
// schema prompt rides as the system instruction; temperature 0 and a JSON
// response MIME keep the reply parseable.
func (e *Engine) Analyze(ctx context.Context, img vision.Payload, vars map[string]string) ([]shared.ExpressionResult, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return nil, Classify(err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		MaxOutputTokens:  ptrInt32(shared.DefaultMaxTokens),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(vision.BuildPrompt(vars))},
	}

	parts := []genai.Part{
		genai.Text("Analyze this image and answer with the JSON array only."),
		&genai.Blob{MIMEType: img.MIME, Data: img.Data},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, Classify(err)
	}

	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Invalid response format from model")},
			shared.ErrModelReply,
			errors.New("empty response"),
		)
	}
	return vision.ParseReply(txt)
}

// Classify maps SDK errors onto the upstream failure taxonomy. Google API
// errors carry the HTTP status; everything else is a transport failure.
func Classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
			return errors.Join(
				&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model rejected the configured credentials")},
				shared.ErrModelAuth,
				err,
			)
		case gerr.Code == http.StatusTooManyRequests:
			return errors.Join(
				&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model rate limited the request")},
				shared.ErrModelRateLimited,
				err,
			)
		default:
			return errors.Join(
				&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model request failed")},
				shared.ErrModelStatus,
				err,
			)
		}
	}
	return errors.Join(
		&shared.RequestError{StatusCode: 500, Err: errors.New("Vision model is unreachable")},
		shared.ErrModelUnreachable,
		err,
	)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

func ptrInt32(v int32) *int32 { return &v }
