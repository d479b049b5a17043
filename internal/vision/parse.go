package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"slate-api/internal/shared"
)

// StripCodeFences removes a leading ```json or ``` fence and the trailing
// fence. Models add these despite being told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseReply decodes a model reply into expression results. The decode is
// strict and fails closed: the top level must be a JSON array, every entry an
// object with a string expr, a string or number result, and an optional
// boolean assign. Anything else is a malformed reply, reported once and
// never retried. Array order is preserved.
func ParseReply(reply string) ([]shared.ExpressionResult, error) {
	cleaned := StripCodeFences(reply)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		var probe any
		if jsonErr := json.Unmarshal([]byte(cleaned), &probe); jsonErr != nil {
			return nil, errors.Join(
				&shared.RequestError{StatusCode: 500, Err: errors.New("Failed to parse model response")},
				shared.ErrModelReply,
				err,
			)
		}
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Invalid response format from model")},
			shared.ErrModelReply,
			err,
		)
	}
	// A literal null decodes into a nil slice without error.
	if items == nil {
		return nil, errors.Join(
			&shared.RequestError{StatusCode: 500, Err: errors.New("Invalid response format from model")},
			shared.ErrModelReply,
			errors.New("reply is null, expected an array"),
		)
	}

	out := make([]shared.ExpressionResult, 0, len(items))
	for i, item := range items {
		entry, err := parseEntry(item)
		if err != nil {
			return nil, errors.Join(
				&shared.RequestError{StatusCode: 500, Err: errors.New("Invalid answer format from model")},
				shared.ErrModelReply,
				fmt.Errorf("reply entry %d: %w", i, err),
			)
		}
		out = append(out, entry)
	}
	return out, nil
}

func parseEntry(item json.RawMessage) (shared.ExpressionResult, error) {
	var fields struct {
		Expr   json.RawMessage `json:"expr"`
		Result json.RawMessage `json:"result"`
		Assign json.RawMessage `json:"assign"`
	}
	if err := json.Unmarshal(item, &fields); err != nil {
		return shared.ExpressionResult{}, errors.New("not an object")
	}
	if fields.Expr == nil {
		return shared.ExpressionResult{}, errors.New("missing expr")
	}
	if fields.Result == nil {
		return shared.ExpressionResult{}, errors.New("missing result")
	}

	// Null decodes as a no-op into any target, so each field rejects it
	// explicitly before its real decode.
	var entry shared.ExpressionResult
	if string(fields.Expr) == "null" {
		return shared.ExpressionResult{}, errors.New("expr is not a string")
	}
	if err := json.Unmarshal(fields.Expr, &entry.Expr); err != nil {
		return shared.ExpressionResult{}, errors.New("expr is not a string")
	}

	// Models emit numeric results as bare numbers; normalize to the literal
	// text so "4" and "6.28" survive unchanged.
	if string(fields.Result) == "null" {
		return shared.ExpressionResult{}, errors.New("result is not a string or number")
	}
	var s string
	if err := json.Unmarshal(fields.Result, &s); err == nil {
		entry.Result = s
	} else {
		var n json.Number
		if err := json.Unmarshal(fields.Result, &n); err != nil {
			return shared.ExpressionResult{}, errors.New("result is not a string or number")
		}
		entry.Result = n.String()
	}

	if fields.Assign != nil {
		if string(fields.Assign) == "null" {
			return shared.ExpressionResult{}, errors.New("assign is not a boolean")
		}
		if err := json.Unmarshal(fields.Assign, &entry.Assign); err != nil {
			return shared.ExpressionResult{}, errors.New("assign is not a boolean")
		}
	}
	return entry, nil
}
